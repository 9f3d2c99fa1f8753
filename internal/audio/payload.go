package audio

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
)

// Encoding is the declared container of an audio payload. It is taken from
// the file extension; the bytes are never sniffed.
type Encoding string

const (
	WAV  Encoding = "wav"
	MP3  Encoding = "mp3"
	M4A  Encoding = "m4a"
	WebM Encoding = "webm" // browser recordings only
	OGG  Encoding = "ogg"  // browser recordings only
)

// Source is the acquisition mode that produced a payload.
type Source string

const (
	SourceRecording Source = "recording"
	SourceUpload    Source = "upload"
)

// Form field names used by the page and the JSON API.
const (
	FieldRecording  = "recording"
	FieldUpload     = "upload"
	FieldLastSource = "last_source"
)

var (
	ErrNoAudio             = errors.New("no audio provided")
	ErrUnsupportedEncoding = errors.New("unsupported audio encoding")
)

var uploadEncodings = map[Encoding]bool{WAV: true, MP3: true, M4A: true}

var recordingEncodings = map[Encoding]bool{WAV: true, WebM: true, OGG: true, M4A: true}

var contentTypes = map[Encoding]string{
	WAV:  "audio/wav",
	MP3:  "audio/mpeg",
	M4A:  "audio/mp4",
	WebM: "audio/webm",
	OGG:  "audio/ogg",
}

// Payload is one submitted audio clip.
type Payload struct {
	Data     []byte
	Encoding Encoding
	Source   Source
	Filename string
}

func (p *Payload) ContentType() string {
	if ct, ok := contentTypes[p.Encoding]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Ext returns the file extension including the leading dot.
func (p *Payload) Ext() string { return "." + string(p.Encoding) }

// EncodingFromFilename maps a file name onto an Encoding by extension.
func EncodingFromFilename(name string) (Encoding, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	enc := Encoding(ext)
	if _, ok := contentTypes[enc]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
	return enc, nil
}

// FromMultipart picks the active payload out of a parsed multipart form.
// Each mode contributes at most one payload. When both are present the one
// named by last_source wins, otherwise the upload does.
func FromMultipart(form *multipart.Form) (*Payload, error) {
	if form == nil {
		return nil, ErrNoAudio
	}

	recording, err := readPart(form, FieldRecording, SourceRecording, WAV, recordingEncodings)
	if err != nil {
		return nil, err
	}
	upload, err := readPart(form, FieldUpload, SourceUpload, "", uploadEncodings)
	if err != nil {
		return nil, err
	}

	switch {
	case recording == nil && upload == nil:
		return nil, ErrNoAudio
	case recording == nil:
		return upload, nil
	case upload == nil:
		return recording, nil
	}

	if last := form.Value[FieldLastSource]; len(last) > 0 && Source(last[0]) == SourceRecording {
		return recording, nil
	}
	return upload, nil
}

// readPart returns nil when the field is missing or empty. fallback is used
// when the file name carries no extension (MediaRecorder blobs).
func readPart(form *multipart.Form, field string, src Source, fallback Encoding, allowed map[Encoding]bool) (*Payload, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	fh := headers[0]
	if fh.Size == 0 {
		return nil, nil
	}

	enc, err := EncodingFromFilename(fh.Filename)
	if err != nil {
		if fallback == "" || filepath.Ext(fh.Filename) != "" {
			return nil, err
		}
		enc = fallback
	}
	if !allowed[enc] {
		return nil, fmt.Errorf("%w for %s: %s", ErrUnsupportedEncoding, src, enc)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &Payload{
		Data:     data,
		Encoding: enc,
		Source:   src,
		Filename: fh.Filename,
	}, nil
}
