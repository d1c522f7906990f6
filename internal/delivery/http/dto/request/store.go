package request

type LojaRequest struct {
	Nome            string  `json:"nome"`
	Endereco        string  `json:"endereco"`
	CidadeID        int64   `json:"cidade_id"`
	Telefone1       string  `json:"telefone1"`
	Telefone2       string  `json:"telefone2"`
	Email           string  `json:"email"`
	Site            string  `json:"site"`
	Logo            string  `json:"logo"`
	Descricao       string  `json:"descricao"`
	CNPJ            string  `json:"cnpj"`
	LocalizacaoLink string  `json:"localizacao_link"`
	WebhookURL      string  `json:"webhook_url"`
	CategoriaIDs    []int64 `json:"categoria_ids"`
	Status          *int    `json:"status"`
}

type MembroRequest struct {
	Email string `json:"email"`
}
