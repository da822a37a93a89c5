package validate

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// ErrInvalidDocument is returned when a persisted document does not match
// its schema.
var ErrInvalidDocument = errors.New("invalid document")

//go:embed schemas/*.json
var schemaFS embed.FS

const maxReported = 5

// Kind selects the schema a document is checked against.
type Kind string

const (
	Policies Kind = "policies"
	Alerts   Kind = "alerts"
)

var (
	schemaMu sync.Mutex
	schemas  = map[Kind]*gojsonschema.Schema{}
)

func schemaFor(kind Kind) (*gojsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if s, ok := schemas[kind]; ok {
		return s, nil
	}
	raw, err := schemaFS.ReadFile("schemas/" + string(kind) + ".json")
	if err != nil {
		return nil, fmt.Errorf("unknown document kind %q: %w", kind, err)
	}
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s schema: %w", kind, err)
	}
	schemas[kind] = s
	return s, nil
}

// Document checks data against the schema for kind.
func Document(kind Kind, data []byte) error {
	schema, err := schemaFor(kind)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidDocument, kind, err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	msgs := make([]string, 0, maxReported)
	for i, e := range errs {
		if i == maxReported {
			msgs = append(msgs, fmt.Sprintf("and %d more", len(errs)-maxReported))
			break
		}
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalidDocument, kind, strings.Join(msgs, "; "))
}
