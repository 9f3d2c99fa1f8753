package audio

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type part struct {
	field, filename string
	data            []byte
}

func buildForm(t *testing.T, parts []part, values map[string]string) *multipart.Form {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.data)
		require.NoError(t, err)
	}
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	form, err := multipart.NewReader(&body, mw.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form
}

func TestEncodingFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    Encoding
		wantErr bool
	}{
		{"clip.wav", WAV, false},
		{"CLIP.MP3", MP3, false},
		{"voice memo.m4a", M4A, false},
		{"recording.webm", WebM, false},
		{"notes.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodingFromFilename(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedEncoding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromMultipartUpload(t *testing.T) {
	form := buildForm(t, []part{{FieldUpload, "clip.mp3", []byte("id3-bytes")}}, nil)

	p, err := FromMultipart(form)
	require.NoError(t, err)
	assert.Equal(t, SourceUpload, p.Source)
	assert.Equal(t, MP3, p.Encoding)
	assert.Equal(t, []byte("id3-bytes"), p.Data)
	assert.Equal(t, "audio/mpeg", p.ContentType())
	assert.Equal(t, ".mp3", p.Ext())
}

func TestFromMultipartRecordingWithoutExtension(t *testing.T) {
	form := buildForm(t, []part{{FieldRecording, "blob", []byte("RIFF")}}, nil)

	p, err := FromMultipart(form)
	require.NoError(t, err)
	assert.Equal(t, SourceRecording, p.Source)
	assert.Equal(t, WAV, p.Encoding)
}

func TestFromMultipartRejectsWebMUpload(t *testing.T) {
	form := buildForm(t, []part{{FieldUpload, "clip.webm", []byte("webm")}}, nil)

	_, err := FromMultipart(form)
	assert.ErrorIs(t, err, ErrUnsupportedEncoding)
}

func TestFromMultipartPrecedence(t *testing.T) {
	parts := []part{
		{FieldRecording, "recording.webm", []byte("rec")},
		{FieldUpload, "clip.wav", []byte("up")},
	}

	p, err := FromMultipart(buildForm(t, parts, nil))
	require.NoError(t, err)
	assert.Equal(t, SourceUpload, p.Source)

	p, err = FromMultipart(buildForm(t, parts, map[string]string{FieldLastSource: "recording"}))
	require.NoError(t, err)
	assert.Equal(t, SourceRecording, p.Source)
	assert.Equal(t, []byte("rec"), p.Data)
}

func TestFromMultipartIgnoresEmptyParts(t *testing.T) {
	form := buildForm(t, []part{
		{FieldUpload, "clip.wav", nil},
		{FieldRecording, "recording.wav", []byte("rec")},
	}, nil)

	p, err := FromMultipart(form)
	require.NoError(t, err)
	assert.Equal(t, SourceRecording, p.Source)
}

func TestFromMultipartNoAudio(t *testing.T) {
	_, err := FromMultipart(buildForm(t, nil, map[string]string{"other": "x"}))
	assert.ErrorIs(t, err, ErrNoAudio)

	_, err = FromMultipart(nil)
	assert.ErrorIs(t, err, ErrNoAudio)
}
