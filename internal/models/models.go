package models

import (
	"time"
)

// Role is the organizational role of an acting user
type Role string

const (
	RoleStaff              Role = "staff"
	RoleHOD                Role = "hod"
	RoleCMD                Role = "cmd"
	RoleDirectorAdmin      Role = "director_admin"
	RoleUnitHead           Role = "unit_head"
	RoleAdmin              Role = "admin"
	RoleSuperAdmin         Role = "super_admin"
	RoleRecordsOfficer     Role = "records_officer"
	RoleAccountant         Role = "accountant"
	RoleITOfficer          Role = "it_officer"
	RoleProcurementOfficer Role = "procurement_officer"
)

// AllRoles lists the closed role enumeration
var AllRoles = []Role{
	RoleStaff,
	RoleHOD,
	RoleCMD,
	RoleDirectorAdmin,
	RoleUnitHead,
	RoleAdmin,
	RoleSuperAdmin,
	RoleRecordsOfficer,
	RoleAccountant,
	RoleITOfficer,
	RoleProcurementOfficer,
}

// Valid reports whether r is part of the role enumeration
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// EdgeKind identifies the organizational routing edge a document travels
type EdgeKind string

const (
	EdgeStaffToHOD         EdgeKind = "staff_to_hod"
	EdgeHODToCMD           EdgeKind = "hod_to_cmd"
	EdgeDirectorToUnitHead EdgeKind = "director_to_unit_head"
	EdgeUnitHeadToStaff    EdgeKind = "unit_head_to_staff"
	EdgeCMDToDirector      EdgeKind = "cmd_to_director"
	EdgePeerShare          EdgeKind = "peer_share"
	EdgeDepartmentShare    EdgeKind = "department_share"
)

// SubmissionStatus is the state of a document submission
type SubmissionStatus string

const (
	SubmissionPending           SubmissionStatus = "pending"
	SubmissionApproved          SubmissionStatus = "approved"
	SubmissionRejected          SubmissionStatus = "rejected"
	SubmissionRevisionRequested SubmissionStatus = "revision_requested"
	SubmissionAcknowledged      SubmissionStatus = "acknowledged"
	SubmissionForwarded         SubmissionStatus = "forwarded"
)

// Terminal reports whether no further transition may leave s
func (s SubmissionStatus) Terminal() bool {
	return s == SubmissionApproved || s == SubmissionRejected || s == SubmissionAcknowledged
}

// ShareStatus is the state of a document share
type ShareStatus string

const (
	ShareSent         ShareStatus = "sent"
	ShareReceived     ShareStatus = "received"
	ShareSeen         ShareStatus = "seen"
	ShareAcknowledged ShareStatus = "acknowledged"
)

// Rank orders share statuses along the sent -> acknowledged chain.
// Unknown statuses rank -1.
func (s ShareStatus) Rank() int {
	switch s {
	case ShareSent:
		return 0
	case ShareReceived:
		return 1
	case ShareSeen:
		return 2
	case ShareAcknowledged:
		return 3
	default:
		return -1
	}
}

// AuditAction tags an audit entry with the transition it records
type AuditAction string

const (
	ActionSent              AuditAction = "sent"
	ActionReceived          AuditAction = "received"
	ActionViewed            AuditAction = "viewed"
	ActionAcknowledged      AuditAction = "acknowledged"
	ActionApproved          AuditAction = "approved"
	ActionRejected          AuditAction = "rejected"
	ActionRevisionRequested AuditAction = "revision_requested"
	ActionForwarded         AuditAction = "forwarded"
)

// Actor is the authenticated user performing an operation
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Department  string `json:"department"`
}

// DirectoryUser is a user known to the routing directory
type DirectoryUser struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"displayName" db:"display_name"`
	Email       string    `json:"email,omitempty" db:"email"`
	Role        Role      `json:"role" db:"role"`
	Department  string    `json:"department" db:"department"`
	Unit        string    `json:"unit,omitempty" db:"unit"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Actor returns the actor descriptor for u
func (u *DirectoryUser) Actor() Actor {
	return Actor{ID: u.ID, DisplayName: u.DisplayName, Role: u.Role, Department: u.Department}
}

// Unit is an organizational unit with an optional assigned head
type Unit struct {
	Name       string  `json:"name" db:"name"`
	HeadUserID *string `json:"headUserId,omitempty" db:"head_user_id"`
}

// Attachment describes a file attached to a submission; content lives elsewhere
type Attachment struct {
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	Location string `json:"location"`
}

// SignatureRecord is the digital signature stamped on a reviewer decision
type SignatureRecord struct {
	SignerID   string    `json:"signerId"`
	SignerName string    `json:"signerName"`
	SignerRole Role      `json:"signerRole"`
	SignedAt   time.Time `json:"signedAt"`
	Digest     string    `json:"digest"`
	KeyRef     string    `json:"keyRef"`
}

// ForwardHop records a previous holder of a forwarded submission
type ForwardHop struct {
	FromUserID   string    `json:"fromUserId"`
	FromUserName string    `json:"fromUserName"`
	FromRole     Role      `json:"fromRole"`
	ToUserID     string    `json:"toUserId"`
	PrevType     EdgeKind  `json:"prevSubmissionType"`
	ForwardedAt  time.Time `json:"forwardedAt"`
}

// Submission is a document escalated from a subordinate to a superior for review
type Submission struct {
	ID             string           `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	FromUserID     string           `json:"fromUserId" db:"from_user_id"`
	FromUserName   string           `json:"fromUserName" db:"from_user_name"`
	FromDepartment string           `json:"fromDepartment" db:"from_department"`
	ToUserID       string           `json:"toUserId" db:"to_user_id"`
	ToUserName     string           `json:"toUserName" db:"to_user_name"`
	ToUnit         *string          `json:"toUnit,omitempty" db:"to_unit"`
	SubmissionType EdgeKind         `json:"submissionType" db:"submission_type"`
	Status         SubmissionStatus `json:"status" db:"status"`
	Comments       string           `json:"comments,omitempty" db:"comments"`
	Feedback       *string          `json:"feedback,omitempty" db:"feedback"`
	Signature      *SignatureRecord `json:"signature,omitempty" db:"signature"`
	Attachments    []Attachment     `json:"attachments" db:"attachments"`
	ForwardChain   []ForwardHop     `json:"forwardChain" db:"forward_chain"`
	SubmittedAt    time.Time        `json:"submittedAt" db:"submitted_at"`
	ReviewedAt     *time.Time       `json:"reviewedAt,omitempty" db:"reviewed_at"`
	AcknowledgedAt *time.Time       `json:"acknowledgedAt,omitempty" db:"acknowledged_at"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty" db:"approved_at"`
	ForwardedAt    *time.Time       `json:"forwardedAt,omitempty" db:"forwarded_at"`
	UpdatedAt      time.Time        `json:"updatedAt" db:"updated_at"`
	Version        int64            `json:"version" db:"version"`
}

// Share is a point-to-point or department-wide distribution of a document
type Share struct {
	ID             string      `json:"id" db:"id"`
	DocumentID     string      `json:"documentId" db:"document_id"`
	FromUserID     string      `json:"fromUserId" db:"from_user_id"`
	FromUserName   string      `json:"fromUserName" db:"from_user_name"`
	FromDepartment string      `json:"fromDepartment" db:"from_department"`
	ToUserID       *string     `json:"toUserId,omitempty" db:"to_user_id"`
	ToDepartment   *string     `json:"toDepartment,omitempty" db:"to_department"`
	Status         ShareStatus `json:"status" db:"status"`
	Message        string      `json:"message,omitempty" db:"message"`
	SharedAt       time.Time   `json:"sharedAt" db:"shared_at"`
	ReceivedAt     *time.Time  `json:"receivedAt,omitempty" db:"received_at"`
	SeenAt         *time.Time  `json:"seenAt,omitempty" db:"seen_at"`
	AcknowledgedAt *time.Time  `json:"acknowledgedAt,omitempty" db:"acknowledged_at"`
}

// EdgeKind returns the routing edge of the share
func (s *Share) EdgeKind() EdgeKind {
	if s.ToDepartment != nil {
		return EdgeDepartmentShare
	}
	return EdgePeerShare
}

// AddressedTo reports whether the actor is the share's recipient by id or department
func (s *Share) AddressedTo(actor Actor) bool {
	if s.ToUserID != nil {
		return *s.ToUserID == actor.ID
	}
	if s.ToDepartment != nil {
		return actor.Department != "" && *s.ToDepartment == actor.Department
	}
	return false
}

// AuditEntry is an immutable record of one accepted transition
type AuditEntry struct {
	ID         string      `json:"id" db:"id"`
	DocumentID string      `json:"documentId" db:"document_id"`
	UserID     string      `json:"userId" db:"user_id"`
	UserName   string      `json:"userName" db:"user_name"`
	Action     AuditAction `json:"action" db:"action"`
	Details    string      `json:"details" db:"details"`
	FromRole   Role        `json:"fromRole" db:"from_role"`
	ToRole     *Role       `json:"toRole,omitempty" db:"to_role"`
	Timestamp  time.Time   `json:"timestamp" db:"occurred_at"`
	PrevHash   string      `json:"prevHash" db:"prev_hash"`
	Hash       string      `json:"hash" db:"hash"`
}
