package h5store

// AccessMode selects how Open treats the file.
type AccessMode int

const (
	// ReadOnly opens an existing container; mutations fail with ErrReadOnly.
	ReadOnly AccessMode = iota
	// ReadWriteAppend opens an existing container, or starts an empty one
	// when the file does not exist.
	ReadWriteAppend
	// ReadWriteTruncate starts an empty container, discarding prior content.
	ReadWriteTruncate
)

func (m AccessMode) String() string {
	switch m {
	case ReadOnly:
		return "read-only"
	case ReadWriteAppend:
		return "read-write-append"
	case ReadWriteTruncate:
		return "read-write-truncate"
	default:
		return "unknown"
	}
}

func (m AccessMode) writable() bool {
	return m == ReadWriteAppend || m == ReadWriteTruncate
}
