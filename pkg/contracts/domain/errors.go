package domain

import (
	"errors"
	"fmt"
)

// ErrDatasetUnavailable is matched by every failure to fetch or decode the
// stations table. The dashboard keeps serving an empty dataset when it
// occurs.
var ErrDatasetUnavailable = errors.New("dataset unavailable")

// DatasetErrorMessage is the text shown to dashboard users when the table
// could not be loaded.
func DatasetErrorMessage(err error) string {
	return fmt.Sprintf("Error al cargar los datos: %v", err)
}
