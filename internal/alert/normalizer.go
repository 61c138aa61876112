package alert

import (
	"time"

	"github.com/google/uuid"

	"enforcer/pkg/errors"
)

// RawAlert is the inbound JSON shape produced by the monitor's HTTP
// output. Container and process identity hide inside output_fields
// under dotted keys.
type RawAlert struct {
	UUID         string                 `json:"uuid"`
	Rule         string                 `json:"rule"`
	Priority     string                 `json:"priority"`
	Output       string                 `json:"output"`
	Time         string                 `json:"time"`
	OutputFields map[string]interface{} `json:"output_fields"`
	Tags         []string               `json:"tags"`
	Source       string                 `json:"source"`
	Hostname     string                 `json:"hostname"`
}

type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Normalize validates a raw payload and converts it into an Alert.
// Missing rule or an unrecognized priority name is a validation error;
// everything else degrades to zero values.
func (n *Normalizer) Normalize(raw RawAlert) (*Alert, error) {
	if raw.Rule == "" {
		return nil, errors.ErrValidation.WithMessage("alert is missing required field 'rule'")
	}

	priority, err := ParsePriority(raw.Priority)
	if err != nil {
		return nil, errors.ErrValidation.
			WithMessage("alert has invalid priority").
			WithCause(err)
	}

	fields := raw.OutputFields
	if fields == nil {
		fields = map[string]interface{}{}
	}

	id := raw.UUID
	if id == "" {
		id = uuid.NewString()
	}

	ts, err := time.Parse(time.RFC3339Nano, raw.Time)
	if err != nil {
		ts = n.now()
	}

	source := raw.Source
	if source == "" {
		source = "syscall"
	}

	return &Alert{
		UUID:     id,
		Rule:     raw.Rule,
		Priority: priority,
		Output:   raw.Output,
		Time:     ts,

		ContainerID:    stringField(fields, "container.id", "container_id"),
		ContainerName:  stringField(fields, "container.name", "container_name"),
		ContainerImage: stringField(fields, "container.image.repository", "container.image", "image"),

		ProcName:    stringField(fields, "proc.name", "process"),
		ProcCmdline: stringField(fields, "proc.cmdline", "cmdline"),
		ProcPID:     intField(fields, "proc.pid"),
		ProcPPID:    intField(fields, "proc.ppid"),
		ParentName:  stringField(fields, "proc.pname", "parent"),

		UserName: stringField(fields, "user.name", "user"),
		UserUID:  intField(fields, "user.uid"),

		FDName: stringField(fields, "fd.name", "connection"),
		FDType: stringField(fields, "fd.type"),

		OutputFields: fields,
		Tags:         raw.Tags,
		Source:       source,
		Hostname:     raw.Hostname,
	}, nil
}

// stringField returns the first non-empty value among the fallback keys.
func stringField(fields map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func intField(fields map[string]interface{}, keys ...string) int {
	for _, key := range keys {
		v, ok := fields[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return 0
}
