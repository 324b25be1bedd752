package database

import "fmt"

// Custom errors
var ErrProfileNotFound = fmt.Errorf("profile not found")
