package report

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/report-accident/internal/media"
	"github.com/ignatzorin/report-accident/internal/models"
	"github.com/ignatzorin/report-accident/internal/pkg/apperror"
)

var testJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01}

func testForm() Form {
	return Form{
		Name:         "Jane Doe",
		Phone:        "5551234567",
		AccidentType: models.AccidentCar,
		Image:        &media.Image{Data: testJPEG, MIME: "image/jpeg"},
	}
}

type decodedPart struct {
	name        string
	fileName    string
	contentType string
	body        []byte
}

func decodeParts(t *testing.T, enc *Encoded) []decodedPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(enc.ContentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)
	require.Equal(t, enc.Boundary, params["boundary"])

	r := multipart.NewReader(bytes.NewReader(enc.Body), params["boundary"])
	var parts []decodedPart
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		body, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, decodedPart{
			name:        p.FormName(),
			fileName:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			body:        body,
		})
	}
	return parts
}

func TestEncoder_ThreeScalarPartsAndOneFile(t *testing.T) {
	enc, err := NewEncoder().Encode(testForm())
	require.NoError(t, err)

	parts := decodeParts(t, enc)
	require.Len(t, parts, 4)

	var scalars, files int
	values := map[string]string{}
	for _, p := range parts {
		if p.fileName != "" {
			files++
			assert.Equal(t, FieldImage, p.name)
			assert.Equal(t, ImageFileName, p.fileName)
			assert.Equal(t, "image/jpeg", p.contentType)
			assert.Equal(t, testJPEG, p.body)
			continue
		}
		scalars++
		values[p.name] = string(p.body)
	}
	assert.Equal(t, 3, scalars)
	assert.Equal(t, 1, files)
	assert.Equal(t, map[string]string{
		FieldName:         "Jane Doe",
		FieldPhone:        "5551234567",
		FieldAccidentType: "Car",
	}, values)
}

func TestEncoder_ClosingBoundaryMatchesOpening(t *testing.T) {
	enc, err := NewEncoder().Encode(testForm())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(enc.Body, []byte("--"+enc.Boundary+"\r\n")))
	assert.True(t, bytes.HasSuffix(enc.Body, []byte("\r\n--"+enc.Boundary+"--\r\n")))
	assert.Contains(t, enc.Boundary, "Boundary-")
}

func TestEncoder_BoundaryUniquePerRequest(t *testing.T) {
	e := NewEncoder()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		enc, err := e.Encode(testForm())
		require.NoError(t, err)
		assert.False(t, seen[enc.Boundary], "граница повторилась: %s", enc.Boundary)
		seen[enc.Boundary] = true
	}
}

func TestEncoder_WithoutImage(t *testing.T) {
	f := testForm()
	f.Image = nil
	enc, err := NewEncoder().Encode(f)
	require.NoError(t, err)
	assert.Len(t, decodeParts(t, enc), 3)
}

func TestEncoder_DefaultsMIME(t *testing.T) {
	f := testForm()
	f.Image = &media.Image{Data: testJPEG}
	enc, err := NewEncoder().Encode(f)
	require.NoError(t, err)
	parts := decodeParts(t, enc)
	assert.Equal(t, media.DefaultMIME, parts[3].contentType)
}

func TestEncoder_RejectsEmptyScalars(t *testing.T) {
	f := testForm()
	f.Phone = "  "
	_, err := NewEncoder().Encode(f)
	assert.ErrorIs(t, err, apperror.ErrInputsIncomplete)
}

func TestEncoder_RejectsMissingAccidentType(t *testing.T) {
	f := testForm()
	f.AccidentType = ""
	_, err := NewEncoder().Encode(f)
	assert.ErrorIs(t, err, apperror.ErrInputsIncomplete)
}

func TestForm_InputsFilled(t *testing.T) {
	assert.True(t, testForm().InputsFilled())

	cases := map[string]func(*Form){
		"no name":  func(f *Form) { f.Name = "" },
		"no phone": func(f *Form) { f.Phone = "" },
		"no type":  func(f *Form) { f.AccidentType = "" },
		"bad type": func(f *Form) { f.AccidentType = "Truck" },
		"no image": func(f *Form) { f.Image = nil },
		"empty image": func(f *Form) {
			f.Image = &media.Image{MIME: "image/jpeg"}
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := testForm()
			mutate(&f)
			assert.False(t, f.InputsFilled())
		})
	}
}
