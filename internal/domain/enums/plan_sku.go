package enums

type PlanSKU string

const (
	PlanSKUUnlock1         PlanSKU = "unlock_1"
	PlanSKUUnlock5         PlanSKU = "unlock_5"
	PlanSKUUnlock10        PlanSKU = "unlock_10"
	PlanSKUUnlockUnlimited PlanSKU = "unlock_unlimited"
)
