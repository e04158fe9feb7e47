package docdb

// Type represents the type of document database.
type Type string

const (
	// TypeMongoDB represents a MongoDB database.
	TypeMongoDB Type = "mongodb"
	// TypeMemory represents the in-process store used in development and tests.
	TypeMemory Type = "memory"
)
