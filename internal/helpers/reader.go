package helpers

import "io"

// ReadAllAndClose reads at most limit bytes from r (unlimited when limit <= 0),
// drains whatever is left so the connection can be reused, and closes r.
func ReadAllAndClose(r io.ReadCloser, limit int64) ([]byte, error) {
	defer r.Close()
	var src io.Reader = r
	if limit > 0 {
		src = io.LimitReader(r, limit)
	}
	b, err := io.ReadAll(src)
	_, _ = io.Copy(io.Discard, r)
	return b, err
}
