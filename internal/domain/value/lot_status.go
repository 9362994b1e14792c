package value

type LotStatus string

const (
	LotStatusDraft      LotStatus = "draft"
	LotStatusPublished  LotStatus = "published"
	LotStatusUnderOffer LotStatus = "under_offer"
	LotStatusSold       LotStatus = "sold"
)

func (s LotStatus) String() string {
	return string(s)
}
