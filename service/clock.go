package services

import (
	"time"

	"github.com/google/uuid"
)

// Indirections so tests can pin time and ids.
var (
	nowFunc   = time.Now
	newIDFunc = uuid.NewString
)
