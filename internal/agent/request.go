package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/ralt/mhwd/internal/models"
	"github.com/ralt/mhwd/internal/signer"
	"github.com/ralt/mhwd/internal/utils"
	"github.com/sirupsen/logrus"
)

// Request wraps a Command for delivery to the executor
type Request struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Bus       string    `json:"bus,omitempty"`
	Command   Command   `json:"command"`
	// Sources maps each config involved to the SHA-256 of its descriptor,
	// letting the executor notice catalog edits made after validation
	Sources map[string]string `json:"sources,omitempty"`
}

// NewRequest wraps cmd with a fresh ID
func NewRequest(cmd Command, bus string) *Request {
	return &Request{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Bus:       bus,
		Command:   cmd,
		Sources:   make(map[string]string),
	}
}

// AddSources records descriptor checksums for configs. Unreadable
// descriptors are logged and left out.
func (r *Request) AddSources(configs ...models.Config) {
	for _, cfg := range configs {
		if cfg.ConfigPath == "" {
			continue
		}
		sum, err := utils.FileSHA256(cfg.ConfigPath)
		if err != nil {
			logrus.Warnf("Failed to checksum %s: %v", cfg.ConfigPath, err)
			continue
		}
		r.Sources[cfg.Name] = sum
	}
}

// Encode returns the request as indented JSON
func (r *Request) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	return append(data, '\n'), nil
}

// Render encodes the request and clear-signs it when s is not nil
func (r *Request) Render(s signer.Signer) ([]byte, error) {
	data, err := r.Encode()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return data, nil
	}

	signed, err := s.SignCleartext(data)
	if err != nil {
		return nil, fmt.Errorf("failed to sign request: %w", err)
	}
	logrus.Debugf("Signed request %s", r.ID)
	return signed, nil
}

// Emit writes the rendered request to w
func (r *Request) Emit(w io.Writer, s signer.Signer) error {
	data, err := r.Render(s)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, bytes.NewReader(data))
	return err
}

// Save writes the rendered request to path
func (r *Request) Save(path string, s signer.Signer) error {
	data, err := r.Render(s)
	if err != nil {
		return err
	}
	if err := utils.WriteFile(path, data, 0600); err != nil {
		return &models.MhwdError{
			Type: models.ErrFileOp,
			Path: path,
			Err:  fmt.Errorf("failed to write request: %w", err),
		}
	}
	logrus.Infof("Wrote %s request %s to %s", r.Command.Operation, r.ID, path)
	return nil
}

// SaveDetached writes the unsigned request to path and an armored
// signature of it to path.asc
func (r *Request) SaveDetached(path string, s signer.Signer) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}

	sig, err := s.SignDetached(data)
	if err != nil {
		return fmt.Errorf("failed to sign request: %w", err)
	}

	for _, f := range []struct {
		path string
		data []byte
	}{
		{path, data},
		{path + ".asc", sig},
	} {
		if err := utils.WriteFile(f.path, f.data, 0600); err != nil {
			return &models.MhwdError{
				Type: models.ErrFileOp,
				Path: f.path,
				Err:  fmt.Errorf("failed to write request: %w", err),
			}
		}
	}

	logrus.Infof("Wrote %s request %s to %s with signature %s.asc", r.Command.Operation, r.ID, path, path)
	return nil
}

// DecodeRequest parses an unsigned request
func DecodeRequest(data []byte) (*Request, error) {
	var r Request
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode request: %w", err)
	}
	return &r, nil
}
