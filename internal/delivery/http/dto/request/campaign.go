package request

import "time"

type CampanhaRequest struct {
	LojaID     int64     `json:"loja_id"`
	Titulo     string    `json:"titulo"`
	Descricao  string    `json:"descricao"`
	DataInicio time.Time `json:"data_inicio"`
	DataFim    time.Time `json:"data_fim"`
	Status     *int      `json:"status"`
}
