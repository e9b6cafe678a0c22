package sendgrid

// AdvancedSuppressionManager selects the unsubscribe group of a message.
type AdvancedSuppressionManager struct {
	// GroupID is the unsubscribe group to associate with this email.
	GroupID int `validate:"required"`
	// GroupsToDisplay lists the groups shown on the unsubscribe preferences page.
	GroupsToDisplay []string
}

// Encode returns the wire form of a.
func (a AdvancedSuppressionManager) Encode() map[string]any {
	m := map[string]any{"group_id": a.GroupID}
	putStrings(m, "groups_to_display", a.GroupsToDisplay)
	return m
}

// DecodeAdvancedSuppressionManager decodes an AdvancedSuppressionManager from its wire form.
func DecodeAdvancedSuppressionManager(m map[string]any) (AdvancedSuppressionManager, error) {
	return decodeASM(newObject("", m))
}

func decodeASM(o object) (a AdvancedSuppressionManager, err error) {
	if a.GroupID, err = o.requiredInt("group_id"); err != nil {
		return AdvancedSuppressionManager{}, err
	}
	if a.GroupsToDisplay, err = o.optStrings("groups_to_display"); err != nil {
		return AdvancedSuppressionManager{}, err
	}
	return a, nil
}
