package handlers

import (
	"net/http"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/request"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	storedto "github.com/joesantos1/querodesconto-parceiros/internal/usecase/dto/store"
)

type StoreHandler struct {
	uc usecase.StoreUsecase
}

func NewStoreHandler(uc usecase.StoreUsecase) *StoreHandler {
	return &StoreHandler{uc: uc}
}

func toStoreInput(req *request.LojaRequest) storedto.StoreInput {
	return storedto.StoreInput{
		Name:         req.Nome,
		Address:      req.Endereco,
		CityID:       req.CidadeID,
		Phone1:       req.Telefone1,
		Phone2:       req.Telefone2,
		Email:        req.Email,
		Site:         req.Site,
		Logo:         req.Logo,
		Description:  req.Descricao,
		LocationLink: req.LocalizacaoLink,
		CNPJ:         req.CNPJ,
		WebhookURL:   req.WebhookURL,
		CategoryIDs:  req.CategoriaIDs,
	}
}

func (h *StoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.LojaRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	store, err := h.uc.CreateStore(r.Context(), &storedto.CreateStoreInput{
		LojistaID:  userID(r),
		StoreInput: toStoreInput(&req),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewLoja(store))
}

func (h *StoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req request.LojaRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	input := &storedto.UpdateStoreInput{
		LojistaID:  userID(r),
		ID:         id,
		StoreInput: toStoreInput(&req),
	}
	if req.Status != nil {
		active := domain.StoreStatus(*req.Status) == domain.StoreActive
		input.Active = &active
	}
	store, err := h.uc.UpdateStore(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewLoja(store))
}

// Disable serves DELETE /lojas/{id}. Stores are only ever switched off.
func (h *StoreHandler) Disable(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.uc.DisableStore(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	store, err := h.uc.GetStore(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewLoja(store))
}

func (h *StoreHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	stores, err := h.uc.ListMyStores(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewLojas(stores))
}

func (h *StoreHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	members, err := h.uc.ListMembers(r.Context(), userID(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, response.NewMembros(members))
}

func (h *StoreHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	var req request.MembroRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	member, err := h.uc.AddMember(r.Context(), &storedto.AddMemberInput{
		LojistaID: userID(r),
		StoreID:   id,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.NewMembro(member))
}

func (h *StoreHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	memberID, err := pathID(r, "lojistaId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := h.uc.RemoveMember(r.Context(), userID(r), id, memberID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
