package domain

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "PENDING"
	StatusAccepted ApplicationStatus = "ACCEPTED"
	StatusRejected ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// EntityType keys the sequence counter table.
type EntityType string

const (
	EntityUser        EntityType = "User"
	EntityProgram     EntityType = "Program"
	EntityApplication EntityType = "Application"
)

type User struct {
	ID        string
	UserID    int64
	Name      string
	Email     string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserWithPassword carries the credential and reset-token columns.
// Only the auth paths see this shape; everything else gets User.
type UserWithPassword struct {
	User
	PasswordHash        string
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time
}

type UserSummary struct {
	ID    string
	Name  string
	Email string
}

type AgendaItem struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

type Program struct {
	ID                  string
	ProgramID           int64
	Title               string
	Description         string
	StartDate           string
	EndDate             string
	OrientationDate     string
	OrientationTime     string
	OrientationLocation string
	OrientationLink     string
	OrientationAgenda   []AgendaItem
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ProgramInput is the mutable portion of a Program; the sequential
// programId is assigned by the store on create and never changes.
type ProgramInput struct {
	Title               string
	Description         string
	StartDate           string
	EndDate             string
	OrientationDate     string
	OrientationTime     string
	OrientationLocation string
	OrientationLink     string
	OrientationAgenda   []AgendaItem
}

type Application struct {
	ID                string
	ApplicationID     int64
	ProgramID         string
	ApplicantID       string
	FullName          string
	Email             string
	DateOfBirth       string
	Institution       string
	GPA               string
	PersonalStatement string
	Status            ApplicationStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ApplicationForm is the snapshot an applicant submits. The values are
// stored as given and stay independent of the live user profile.
type ApplicationForm struct {
	FullName          string
	Email             string
	DateOfBirth       string
	Institution       string
	GPA               string
	PersonalStatement string
}

type ApplicationWithProgram struct {
	Application
	Program Program
}

// ApplicationDetail is the admin view: program plus applicant identity.
type ApplicationDetail struct {
	Application
	Program   Program
	Applicant UserSummary
}

type DashboardCounts struct {
	Users        int64
	Programs     int64
	Applications int64
}
