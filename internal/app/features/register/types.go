// internal/app/features/register/types.go
package register

import (
	"github.com/temanawa/iwihub/internal/app/system/formutil"
	"github.com/temanawa/iwihub/internal/domain/models"
)

// formVM is the view model for the registration form.
type formVM struct {
	formutil.Base

	FullName string
	Email    string
	IwiID    string
	HapuID   string

	Iwis []models.Iwi
}
