package config

import "time"

// Application constants
const (
	AppName    = "indicadores-dashboard"
	AppVersion = "1.0.0"
	AppTitle   = "Dashboard de Eficiencia Operativa"

	// DefaultSourceURL is the published CSV export of the stations sheet.
	DefaultSourceURL   = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQ3uglhp1iEb6nz_Rjh6SnKyt0GqaAxOwGIqsQEdgcwJfrSP2wOZqFfrIjKL3KfsLzi4sSq2HJ3nkAt/pub?gid=0&single=true&output=csv"
	DefaultSheetsRange = "A:I"

	DefaultFetchTimeout   = 30 * time.Second
	DefaultMaxSourceBytes = 32 << 20
	DefaultRequestTimeout = 60 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	DefaultLogFile = "logs/dashboard.log"
)
