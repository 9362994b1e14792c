package entity

type Commodity struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"name" db:"name"`
	Ticker        string `json:"ticker" db:"ticker"`
	UnitOfMeasure string `json:"unitOfMeasure" db:"unit_of_measure"`
}
