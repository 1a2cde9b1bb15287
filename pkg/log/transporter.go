package log

// Transporter is an output destination for entries.
type Transporter interface {
	Name() string
	Write(entry Entry) error
	Close() error
}
