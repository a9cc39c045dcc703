// Package visibility decides whether an owner's last known location may be
// shown to a viewer. The rule is pure and fails closed: missing or ambiguous
// state always means hidden.
package visibility

// Reason explains a decision. Hidden decisions carry the first check that
// failed; visible decisions carry the branch that granted access.
type Reason string

const (
	ReasonNoPreferences Reason = "no_preferences"
	ReasonDisabled      Reason = "disabled"
	ReasonNoLocation    Reason = "no_location"
	ReasonNotFollower   Reason = "not_follower"
	ReasonNotShared     Reason = "not_shared"
	ReasonSelf          Reason = "self"
	ReasonAllFollowers  Reason = "all_followers"
	ReasonExplicitShare Reason = "explicit_share"
)

// Input is everything the rule needs about one (owner, viewer) pair.
type Input struct {
	HasPreferences        bool
	Enabled               bool
	VisibleToAllFollowers bool
	ViewerFollowsOwner    bool
	SharedWithViewer      bool
	HasLocation           bool
	ViewerIsOwner         bool
}

type Decision struct {
	Visible bool
	Reason  Reason
}

func hidden(r Reason) Decision { return Decision{Reason: r} }

// Decide evaluates the master switch first and only then the follower and
// explicit-share branches. An explicit share is honored only while the
// viewer still follows the owner.
func Decide(in Input) Decision {
	if !in.HasPreferences {
		return hidden(ReasonNoPreferences)
	}
	if !in.Enabled {
		return hidden(ReasonDisabled)
	}
	// The viewer's own pin is not part of the friend map.
	if in.ViewerIsOwner {
		return hidden(ReasonSelf)
	}
	if !in.HasLocation {
		return hidden(ReasonNoLocation)
	}

	if in.VisibleToAllFollowers {
		if !in.ViewerFollowsOwner {
			return hidden(ReasonNotFollower)
		}
		return Decision{Visible: true, Reason: ReasonAllFollowers}
	}

	if !in.SharedWithViewer {
		return hidden(ReasonNotShared)
	}
	if !in.ViewerFollowsOwner {
		return hidden(ReasonNotFollower)
	}
	return Decision{Visible: true, Reason: ReasonExplicitShare}
}
