package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akarpovs/viewtube/internal/common"
)

// maxUploadBytes bounds in-memory multipart parsing; larger parts spill to
// disk.
const maxUploadBytes = 32 << 20

// saveUploadedFile copies the named multipart field to a temp file and
// returns its path with a cleanup func. The temp file is removed by cleanup
// in every outcome, upload success or not. A missing optional field returns
// ("", noop, nil).
func saveUploadedFile(r *http.Request, field string, required bool) (string, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if err != nil {
		if required {
			return "", noop, fmt.Errorf("%w: file %q is required", common.ErrValidation, field)
		}
		return "", noop, nil
	}
	defer file.Close()

	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(header.Filename))
	if err != nil {
		return "", noop, fmt.Errorf("%w: creating temp file: %v", common.ErrMediaOperation, err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("%w: buffering upload: %v", common.ErrMediaOperation, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", noop, fmt.Errorf("%w: buffering upload: %v", common.ErrMediaOperation, err)
	}

	path := tmp.Name()
	return path, func() { os.Remove(path) }, nil
}
