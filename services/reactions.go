package services

// ReviewAction is what a reaction (or dashboard button) asks the bot to do.
type ReviewAction string

const (
	ActionRequest        ReviewAction = "request"
	ActionClaim          ReviewAction = "claim"
	ActionApprove        ReviewAction = "approve"
	ActionRequestChanges ReviewAction = "requestChanges"
	ActionRemove         ReviewAction = "remove"
	ActionWithdraw       ReviewAction = "withdraw"
	ActionFinish         ReviewAction = "finish"
	ActionClose          ReviewAction = "close"
	ActionUnknown        ReviewAction = "unknown"
)

// ParseReaction converts a Slack reaction emoji name to a review action.
// removed reports whether the reaction was taken off the message rather than
// added: un-claiming is a withdraw, un-approving a finish, and removing the
// review request itself removes the review.
func ParseReaction(name string, removed bool) ReviewAction {
	if removed {
		switch name {
		case "review", "code-review":
			return ActionRemove
		case "eyes", "claimed":
			return ActionWithdraw
		case "white_check_mark", "approved", "heavy_check_mark":
			return ActionFinish
		}
		return ActionUnknown
	}

	switch name {
	case "review", "code-review":
		return ActionRequest
	case "eyes", "claimed":
		return ActionClaim
	case "white_check_mark", "approved", "heavy_check_mark":
		return ActionApprove
	case "memo", "change", "request-changes":
		return ActionRequestChanges
	case "wastebasket", "trash", "x":
		return ActionRemove
	case "done":
		return ActionFinish
	case "merged", "closed", "lock":
		return ActionClose
	}
	return ActionUnknown
}

// ParseDashboardAction maps an action name from the dashboard API to a review
// action. The dashboard cannot request a review; that only happens in Slack.
func ParseDashboardAction(name string) ReviewAction {
	switch ReviewAction(name) {
	case ActionClaim, ActionApprove, ActionRequestChanges,
		ActionRemove, ActionWithdraw, ActionFinish, ActionClose:
		return ReviewAction(name)
	}
	return ActionUnknown
}
