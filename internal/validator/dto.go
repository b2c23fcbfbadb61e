package validator

type RegisterUserRequest struct {
	Username  string  `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=8,max=72"`
	FirstName string  `json:"first_name" validate:"max=100"`
	LastName  string  `json:"last_name" validate:"max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
	Role      string  `json:"role" validate:"required,user_role"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitempty,email,max=255"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	Phone     *string `json:"phone" validate:"omitempty,phone"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// EventRequest is used for both create and update; updates replace every field.
type EventRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	EventType   string `json:"event_type" validate:"required,event_type"`
	StartDate   string `json:"start_date" validate:"required,date"`
	EndDate     string `json:"end_date" validate:"required,date"`
	StartTime   string `json:"start_time" validate:"required,clock"`
	EndTime     string `json:"end_time" validate:"required,clock"`
	Location    string `json:"location" validate:"required,max=255"`
	Capacity    int    `json:"capacity" validate:"required,min=1,max=100000"`
	Description string `json:"description" validate:"max=5000"`
}

type AuditLogQuery struct {
	EntityType string `form:"entity_type" validate:"omitempty,oneof=User Event Registration Certificate"`
	Action     string `form:"action" validate:"omitempty,audit_action"`
	Limit      int    `form:"limit" validate:"omitempty,min=1,max=500"`
	Offset     int    `form:"offset" validate:"omitempty,min=0"`
}
