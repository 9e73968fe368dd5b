package services

import (
	"errors"

	"gorm.io/gorm"

	"promptvault-backend/internal/apperr"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
)

// Action enumerates the operations the resolver authorizes.
type Action string

const (
	ActionRead            Action = "read"
	ActionCreateContent   Action = "create_content"
	ActionEdit            Action = "edit"
	ActionDelete          Action = "delete"
	ActionFork            Action = "fork"
	ActionManageMembers   Action = "manage_members"
	ActionManageWorkspace Action = "manage_workspace"
)

// minimumRole is the permission matrix: the lowest role allowed to perform
// each action. The author and role-ceiling exceptions are not monotonic in
// rank, so they live as explicit rules below, never folded in here.
var minimumRole = map[Action]models.Role{
	ActionRead:            models.RoleViewer,
	ActionCreateContent:   models.RoleMember,
	ActionEdit:            models.RoleEditor,
	ActionDelete:          models.RoleEditor,
	ActionFork:            models.RoleEditor,
	ActionManageMembers:   models.RoleAdmin,
	ActionManageWorkspace: models.RoleOwner,
}

// Denial reason codes.
const (
	ReasonNotAMember       = "NOT_A_MEMBER"
	ReasonInsufficientRole = "INSUFFICIENT_ROLE"
	ReasonRoleCeiling      = "ROLE_CEILING"
	ReasonNotFoundOrHidden = "RESOURCE_NOT_FOUND_OR_HIDDEN"
)

// Decision is the resolver's verdict for one (user, resource, action) triple.
type Decision struct {
	Allowed       bool
	EffectiveRole models.Role
	Reason        string
}

// ResolveRole computes the user's effective role in a workspace: the owner is
// always OWNER regardless of membership rows, then the membership row's role,
// otherwise no role. A zero userID is the anonymous caller.
func ResolveRole(userID uint, ws *models.Workspace) (models.Role, error) {
	if userID == 0 {
		return "", nil
	}
	if ws.OwnerID == userID {
		return models.RoleOwner, nil
	}

	var member models.WorkspaceMember
	err := database.DB.Where("workspace_id = ? AND user_id = ?", ws.ID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperr.Internal(err)
	}
	return member.Role, nil
}

// Authorize checks action against the permission matrix for the caller's
// effective role in ws.
func Authorize(userID uint, ws *models.Workspace, action Action) (Decision, error) {
	role, err := ResolveRole(userID, ws)
	if err != nil {
		return Decision{}, err
	}
	if role == "" {
		return Decision{Allowed: false, Reason: ReasonNotAMember}, nil
	}

	min, ok := minimumRole[action]
	if !ok || !role.AtLeast(min) {
		return Decision{Allowed: false, EffectiveRole: role, Reason: ReasonInsufficientRole}, nil
	}
	return Decision{Allowed: true, EffectiveRole: role}, nil
}

// AuthorizePrompt layers the prompt-level rules on top of Authorize:
//   - public prompts admit reads from anyone, as an alternate success path
//     rather than a role substitution;
//   - a MEMBER may edit or delete content it authored even though MEMBER
//     cannot touch others' content (the author exception).
func AuthorizePrompt(userID uint, ws *models.Workspace, prompt *models.Prompt, action Action) (Decision, error) {
	if action == ActionRead && prompt.IsPublic {
		role, err := ResolveRole(userID, ws)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Allowed: true, EffectiveRole: role}, nil
	}

	decision, err := Authorize(userID, ws, action)
	if err != nil {
		return Decision{}, err
	}
	if decision.Allowed {
		return decision, nil
	}

	if (action == ActionEdit || action == ActionDelete) &&
		prompt.CreatedBy == userID &&
		decision.EffectiveRole.AtLeast(models.RoleMember) {
		return Decision{Allowed: true, EffectiveRole: decision.EffectiveRole}, nil
	}
	return decision, nil
}

// CanManageMember applies the role-ceiling exception: an ADMIN may manage
// members but may not remove or re-role another ADMIN or the OWNER.
func CanManageMember(actor, target models.Role) Decision {
	switch {
	case actor == models.RoleOwner:
		return Decision{Allowed: true, EffectiveRole: actor}
	case actor == models.RoleAdmin:
		if target == models.RoleAdmin || target == models.RoleOwner {
			return Decision{Allowed: false, EffectiveRole: actor, Reason: ReasonRoleCeiling}
		}
		return Decision{Allowed: true, EffectiveRole: actor}
	case actor == "":
		return Decision{Allowed: false, Reason: ReasonNotAMember}
	default:
		return Decision{Allowed: false, EffectiveRole: actor, Reason: ReasonInsufficientRole}
	}
}

// DecisionError converts a denial into the typed error surfaced to callers.
func DecisionError(d Decision) error {
	switch d.Reason {
	case ReasonNotAMember:
		return apperr.Permission("not a workspace member")
	case ReasonRoleCeiling:
		return apperr.Permission("admins cannot manage other admins or the owner")
	case ReasonNotFoundOrHidden:
		return apperr.NotFound()
	default:
		return apperr.Permission("insufficient role")
	}
}
