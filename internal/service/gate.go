package service

import (
	"medidocs/internal/models"
)

// Transition names an action taken on a submission or share
type Transition string

const (
	TransitionSubmit          Transition = "submit"
	TransitionApprove         Transition = "approve"
	TransitionReject          Transition = "reject"
	TransitionRequestRevision Transition = "request_revision"
	TransitionAcknowledge     Transition = "acknowledge"
	TransitionForward         Transition = "forward"
	TransitionReceive         Transition = "receive"
	TransitionView            Transition = "view"
)

type edgeRoles struct {
	sender   models.Role
	reviewer models.Role
}

// Submission edges and the roles on either end
var submissionEdges = map[models.EdgeKind]edgeRoles{
	models.EdgeStaffToHOD:         {sender: models.RoleStaff, reviewer: models.RoleHOD},
	models.EdgeHODToCMD:           {sender: models.RoleHOD, reviewer: models.RoleCMD},
	models.EdgeDirectorToUnitHead: {sender: models.RoleDirectorAdmin, reviewer: models.RoleUnitHead},
	models.EdgeUnitHeadToStaff:    {sender: models.RoleUnitHead, reviewer: models.RoleStaff},
	models.EdgeCMDToDirector:      {sender: models.RoleCMD, reviewer: models.RoleDirectorAdmin},
}

var fullReview = []Transition{
	TransitionApprove,
	TransitionReject,
	TransitionRequestRevision,
	TransitionAcknowledge,
	TransitionForward,
}

// Decisions the designated reviewer of each edge may take.
// Staff receiving a directive from their unit head can only acknowledge it.
var reviewerTransitions = map[models.EdgeKind][]Transition{
	models.EdgeStaffToHOD:         fullReview,
	models.EdgeHODToCMD:           fullReview,
	models.EdgeDirectorToUnitHead: fullReview,
	models.EdgeCMDToDirector:      fullReview,
	models.EdgeUnitHeadToStaff:    {TransitionAcknowledge},
}

// forwardScope lists the roles a holder may forward a submission to
var forwardScope = map[models.Role][]models.Role{
	models.RoleHOD:           {models.RoleCMD},
	models.RoleCMD:           {models.RoleDirectorAdmin},
	models.RoleDirectorAdmin: {models.RoleUnitHead},
	models.RoleUnitHead:      {models.RoleStaff},
}

// CanPerform decides whether a role may take a transition on a routing edge.
// It is a role-level decision only: callers must additionally verify that the
// actor is the current holder of a submission or the addressee of a share.
func CanPerform(role models.Role, edge models.EdgeKind, transition Transition) bool {
	if !role.Valid() {
		return false
	}

	switch edge {
	case models.EdgePeerShare, models.EdgeDepartmentShare:
		switch transition {
		case TransitionSubmit, TransitionReceive, TransitionView, TransitionAcknowledge:
			return true
		}
		return false
	}

	roles, ok := submissionEdges[edge]
	if !ok {
		return false
	}

	if transition == TransitionSubmit {
		return role == roles.sender
	}

	if role != roles.reviewer {
		return false
	}
	for _, allowed := range reviewerTransitions[edge] {
		if allowed == transition {
			return true
		}
	}
	return false
}

// CanForwardTo reports whether a holder role may forward to the target role
func CanForwardTo(holder, target models.Role) bool {
	for _, r := range forwardScope[holder] {
		if r == target {
			return true
		}
	}
	return false
}

// EdgeFor returns the submission edge travelled from sender to reviewer role
func EdgeFor(sender, reviewer models.Role) (models.EdgeKind, bool) {
	for edge, roles := range submissionEdges {
		if roles.sender == sender && roles.reviewer == reviewer {
			return edge, true
		}
	}
	return "", false
}

// ReviewerRole returns the designated reviewer role of a submission edge
func ReviewerRole(edge models.EdgeKind) (models.Role, bool) {
	roles, ok := submissionEdges[edge]
	return roles.reviewer, ok
}

// SenderRole returns the originating role of a submission edge
func SenderRole(edge models.EdgeKind) (models.Role, bool) {
	roles, ok := submissionEdges[edge]
	return roles.sender, ok
}

// transitionFor maps a requested submission status onto the gate transition
func transitionFor(status models.SubmissionStatus) (Transition, bool) {
	switch status {
	case models.SubmissionApproved:
		return TransitionApprove, true
	case models.SubmissionRejected:
		return TransitionReject, true
	case models.SubmissionRevisionRequested:
		return TransitionRequestRevision, true
	case models.SubmissionAcknowledged:
		return TransitionAcknowledge, true
	case models.SubmissionForwarded:
		return TransitionForward, true
	}
	return "", false
}

// allowedSubmissionTransitions is the submission status graph
var allowedSubmissionTransitions = map[models.SubmissionStatus][]models.SubmissionStatus{
	models.SubmissionPending: {
		models.SubmissionApproved,
		models.SubmissionRejected,
		models.SubmissionRevisionRequested,
		models.SubmissionAcknowledged,
		models.SubmissionForwarded,
	},
	models.SubmissionRevisionRequested: {
		models.SubmissionApproved,
		models.SubmissionRejected,
		models.SubmissionRevisionRequested,
		models.SubmissionForwarded,
	},
	models.SubmissionForwarded: {
		models.SubmissionAcknowledged,
		models.SubmissionApproved,
		models.SubmissionRejected,
		models.SubmissionRevisionRequested,
	},
	models.SubmissionApproved:     {},
	models.SubmissionRejected:     {},
	models.SubmissionAcknowledged: {},
}

// CanTransition reports whether the submission status graph has an edge from -> to
func CanTransition(from, to models.SubmissionStatus) bool {
	for _, next := range allowedSubmissionTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
