package service

import (
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Read-view cache keys. Any mutating call invalidates these explicitly;
// there is no push-based refresh.
const (
	productsCacheKey = "products:all"
	ordersCacheKey   = "orders:all"
)
