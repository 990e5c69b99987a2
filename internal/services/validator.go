package services

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nomadshift/backend/internal/apperrors"
)

// Request body schema names, one per file under schemas/.
const (
	SchemaAuthSession        = "auth_session"
	SchemaSetRole            = "set_role"
	SchemaWorkerOnboarding   = "worker_onboarding"
	SchemaBusinessOnboarding = "business_onboarding"
	SchemaCreateJob          = "create_job"
	SchemaApply              = "apply"
	SchemaReview             = "review"
	SchemaSendMessage        = "send_message"
	SchemaImproveDescription = "improve_description"
)

const maxBodyBytes = 1 << 20

//go:embed schemas/*.json
var schemaFS embed.FS

// ErrValidation can be used with errors.Is to detect rejected request bodies.
var ErrValidation = apperrors.ErrValidation

// Validator checks request bodies against the embedded JSON Schemas before they are decoded.
type Validator struct {
	schemas map[string]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator(ctx context.Context) (*Validator, error) {
	return newValidator(ctx, schemaFS, "schemas")
}

func newValidator(_ context.Context, fsys fs.FS, dir string) (*Validator, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir %q: %w", dir, err)
	}
	schemas := make(map[string]*jsonschema.Schema)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %q: %w", e.Name(), err)
		}
		schemas[name], err = jsonschema.CompileString("https://nomadshift.app/schemas/"+name+".json", string(data))
		if err != nil {
			return nil, fmt.Errorf("compile schema %q: %w", name, err)
		}
	}
	return &Validator{schemas: schemas}, nil
}

// Validate performs a hard reject of body against the named schema.
func (v *Validator) Validate(ctx context.Context, name string, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return apperrors.Validation("request body is not valid JSON")
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return apperrors.Validation(describe(ve))
		}
		return apperrors.Validation(err.Error())
	}
	return nil
}

// Decode reads r, validates it against the named schema and unmarshals it into dst.
func (v *Validator) Decode(ctx context.Context, name string, r io.Reader, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return apperrors.Validation("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return apperrors.Validation("request body too large")
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := v.Validate(ctx, name, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperrors.Validation("request body does not match the expected shape")
	}
	return nil
}

// describe reports the first leaf failure as "<instance path>: <message>".
func describe(ve *jsonschema.ValidationError) string {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
