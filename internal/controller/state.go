package controller

import (
	"encoding/base64"
	"fmt"
)

// StateKind names a controller state.
type StateKind string

const (
	KindLoading        StateKind = "loading"
	KindAuthenticating StateKind = "authenticating"
	KindUploading      StateKind = "uploading"
	KindTranslating    StateKind = "translating"
	KindReady          StateKind = "ready"
	KindError          StateKind = "error"
)

// State is one of Loading, Authenticating, Uploading, Translating, Ready or
// Error. The set is closed.
type State interface {
	Kind() StateKind
	state()
}

type Loading struct{}

type Authenticating struct{}

type Uploading struct{}

// Translating carries the last progress reported by the service (0-100).
type Translating struct {
	Progress int
}

// Ready holds the translated image as returned by the service.
type Ready struct {
	ImageBase64      string
	MimeType         string
	DetectedLanguage string
}

type Error struct {
	Message string
}

func (Loading) Kind() StateKind        { return KindLoading }
func (Authenticating) Kind() StateKind { return KindAuthenticating }
func (Uploading) Kind() StateKind      { return KindUploading }
func (Translating) Kind() StateKind    { return KindTranslating }
func (Ready) Kind() StateKind          { return KindReady }
func (Error) Kind() StateKind          { return KindError }

func (Loading) state()        {}
func (Authenticating) state() {}
func (Uploading) state()      {}
func (Translating) state()    {}
func (Ready) state()          {}
func (Error) state()          {}

// Decode returns the raw image bytes.
func (r Ready) Decode() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(r.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode translated image: %w", err)
	}
	return data, nil
}
