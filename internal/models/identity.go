package models

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleManager    Role = "manager"
)

// Identity is the caller identity supplied by the external identity
// provider. The engine trusts it as input and re-validates ownership
// (e.g. only an exam's own instructor may derive its corrective exam);
// it never authenticates credentials itself.
type Identity struct {
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
	StudentID    *uint  `json:"student_id,omitempty"`
	InstructorID *uint  `json:"instructor_id,omitempty"`
}

func (i Identity) IsStudent() bool    { return i.Role == RoleStudent && i.StudentID != nil }
func (i Identity) IsInstructor() bool { return i.Role == RoleInstructor && i.InstructorID != nil }
func (i Identity) IsManager() bool    { return i.Role == RoleManager }
