package gvp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrWrongMode reports a dataset accessor invoked on a database mode that
// cannot serve it.
var ErrWrongMode = errors.New("wrong database mode for operation")

// InvalidDatasetError reports a dataset identifier outside the supported
// enumeration.
type InvalidDatasetError struct {
	Dataset Dataset
}

func (e *InvalidDatasetError) Error() string {
	names := make([]string, 0, len(typeNames))
	for _, d := range Datasets() {
		names = append(names, string(d))
	}
	return fmt.Sprintf("invalid dataset %q, expected one of: %s",
		string(e.Dataset), strings.Join(names, ", "))
}

// DownloadError reports a failed dataset fetch, carrying the request URL and
// the transport-level cause.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
