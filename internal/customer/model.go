package customer

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/salon-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NewKind(http.StatusNotFound, apperror.KindNotFound, "customer not found")
	ErrEmailRequired    = apperror.New(http.StatusBadRequest, "customer email is required")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "customer name is required")
	ErrEmailAlreadyUsed = apperror.New(http.StatusConflict, "email already used")
)

// Customer is a person who books appointments. Email is the natural key.
type Customer struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Input carries the details used to look up or provision a customer.
type Input struct {
	Name  string
	Email string
	Phone string
}
