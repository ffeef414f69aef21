package h5store

import "errors"

// Common errors. Returned errors wrap one of these; match with errors.Is.
var (
	ErrNotOpen           = errors.New("store is not open")
	ErrAlreadyOpen       = errors.New("store is already open")
	ErrIO                = errors.New("container i/o failed")
	ErrInvalidPath       = errors.New("invalid dataset path")
	ErrNotFound          = errors.New("dataset not found")
	ErrDimensionMismatch = errors.New("value count does not match dimensions")
	ErrRankMismatch      = errors.New("dataset rank mismatch")
	ErrReadOnly          = errors.New("store is read-only")
	ErrExists            = errors.New("dataset already exists")
	ErrNotGroup          = errors.New("path component is not a group")
	ErrNotDataset        = errors.New("object is not a dataset")
	ErrUnsupported       = errors.New("unsupported container feature")
)
