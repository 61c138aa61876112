package alert

import (
	"strings"
	"time"
)

// Alert is the normalized form of an inbound Falco event. Immutable
// once built by the normalizer.
type Alert struct {
	UUID     string    `json:"uuid"`
	Rule     string    `json:"rule"`
	Priority Priority  `json:"priority"`
	Output   string    `json:"output"`
	Time     time.Time `json:"time"`

	ContainerID    string `json:"container_id,omitempty"`
	ContainerName  string `json:"container_name,omitempty"`
	ContainerImage string `json:"container_image,omitempty"`

	ProcName    string `json:"process,omitempty"`
	ProcCmdline string `json:"cmdline,omitempty"`
	ProcPID     int    `json:"pid,omitempty"`
	ProcPPID    int    `json:"ppid,omitempty"`
	ParentName  string `json:"parent,omitempty"`

	UserName string `json:"user,omitempty"`
	UserUID  int    `json:"uid,omitempty"`

	FDName string `json:"connection,omitempty"`
	FDType string `json:"fd_type,omitempty"`

	OutputFields map[string]interface{} `json:"output_fields,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	Source       string                 `json:"source"`
	Hostname     string                 `json:"hostname,omitempty"`
}

// ShortContainerID truncates the container ID to the familiar 12-char
// form for log output.
func (a *Alert) ShortContainerID() string {
	if len(a.ContainerID) > 12 {
		return a.ContainerID[:12]
	}
	return a.ContainerID
}

// MitreTactics extracts MITRE ATT&CK tactic tags.
func (a *Alert) MitreTactics() []string {
	var tactics []string
	for _, t := range a.Tags {
		if strings.HasPrefix(t, "mitre_") {
			tactics = append(tactics, t)
		}
	}
	return tactics
}

// TechniqueIDs extracts MITRE ATT&CK technique ID tags.
func (a *Alert) TechniqueIDs() []string {
	var ids []string
	for _, t := range a.Tags {
		if strings.HasPrefix(t, "T") {
			ids = append(ids, t)
		}
	}
	return ids
}
