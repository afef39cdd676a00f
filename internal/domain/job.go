package domain

import (
	"slices"
	"time"
)

// Job is a listing on the jobs board. Applicants only ever grow.
type Job struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Type         string    `json:"type"` // "Full-time", "Contract", ...
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	Salary       string    `json:"salary"`
	CompanyLogo  string    `json:"companyLogo"`
	Applicants   []string  `json:"applicants"`
	Timestamp    time.Time `json:"timestamp"`
	Featured     bool      `json:"featured,omitempty"`
	Remote       bool      `json:"remote,omitempty"`
	Urgent       bool      `json:"urgent,omitempty"`
}

// HasApplicant reports whether userID has applied.
func (j Job) HasApplicant(userID string) bool {
	return slices.Contains(j.Applicants, userID)
}

// Clone returns a deep copy of the job.
func (j Job) Clone() Job {
	j.Requirements = slices.Clone(j.Requirements)
	j.Applicants = slices.Clone(j.Applicants)
	return j
}
