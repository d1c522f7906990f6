package storedto

type StoreInput struct {
	Name         string
	Address      string
	CityID       int64
	Phone1       string
	Phone2       string
	Email        string
	Site         string
	Logo         string
	Description  string
	LocationLink string
	CNPJ         string
	WebhookURL   string
	CategoryIDs  []int64
}

type CreateStoreInput struct {
	LojistaID int64
	StoreInput
}

type UpdateStoreInput struct {
	LojistaID int64
	ID        int64
	Active    *bool
	StoreInput
}

type AddMemberInput struct {
	LojistaID int64
	StoreID   int64
	Email     string
}
