package httpapi

// Config defines HTTP API settings.
type Config struct {
	Addr     string
	BasePath string
	// StreamHistory is the number of events kept for Last-Event-ID replay.
	StreamHistory int
}
