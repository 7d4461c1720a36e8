package domain

import (
	"time"
)

// Tier gates feature and content access.
type Tier string

const (
	TierFree  Tier = "free"
	TierStart Tier = "start"
	TierBuild Tier = "build"
	TierScale Tier = "scale"
)

var tierRank = map[Tier]int{
	TierFree:  0,
	TierStart: 1,
	TierBuild: 2,
	TierScale: 3,
}

// AtLeast reports whether t grants everything min grants. Unknown tiers
// rank as free.
func (t Tier) AtLeast(min Tier) bool {
	return tierRank[t] >= tierRank[min]
}

// Subscription is the result of the hosted check-subscription function.
type Subscription struct {
	Tier              Tier       `json:"tier"`
	Subscribed        bool       `json:"subscribed"`
	SubscriptionEnd   *time.Time `json:"subscription_end"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

func FreeSubscription() Subscription {
	return Subscription{Tier: TierFree}
}

// Addons lists the add-on products a user owns.
type Addons struct {
	Addons []string `json:"addons"`
}

func (a Addons) Has(id string) bool {
	for _, v := range a.Addons {
		if v == id {
			return true
		}
	}
	return false
}

// RedirectURL is returned by checkout and billing portal functions.
type RedirectURL struct {
	URL string `json:"url"`
}
