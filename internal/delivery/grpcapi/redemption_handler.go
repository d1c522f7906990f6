package grpcapi

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/dto/response"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

type RedemptionHandler struct {
	uc usecase.ValidationUsecase
}

func NewRedemptionHandler(uc usecase.ValidationUsecase) *RedemptionHandler {
	return &RedemptionHandler{uc: uc}
}

var _ RedemptionServer = (*RedemptionHandler)(nil)

func merchantID(ctx context.Context) int64 {
	p, _ := middleware.PrincipalFrom(ctx)
	return p.UserID
}

func field(req *structpb.Struct, name string) string {
	if req == nil {
		return ""
	}
	if v, ok := req.GetFields()[name]; ok {
		return v.GetStringValue()
	}
	return ""
}

// toStruct reuses the REST representation so both transports return the
// same document.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h *RedemptionHandler) Resolve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := field(req, "codigo")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "codigo is required")
	}
	d, err := h.uc.Resolve(ctx, code, merchantID(ctx))
	if err != nil {
		return nil, toStatus(MethodResolve, err)
	}
	return h.reply(response.NewValidacao(d))
}

func (h *RedemptionHandler) ConfirmUse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	code := field(req, "codigo")
	if code == "" {
		return nil, status.Error(codes.InvalidArgument, "codigo is required")
	}
	d, err := h.uc.ConfirmUse(ctx, code, merchantID(ctx), field(req, "userEmail"))
	if err != nil {
		return nil, toStatus(MethodConfirmUse, err)
	}
	return h.reply(response.NewValidacao(d))
}

func (h *RedemptionHandler) LastValidated(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	list, err := h.uc.LastValidated(ctx, merchantID(ctx))
	if err != nil {
		return nil, toStatus(MethodLastValidated, err)
	}
	return h.reply(map[string]any{"validados": response.NewValidacoes(list)})
}

func (h *RedemptionHandler) reply(v any) (*structpb.Struct, error) {
	out, err := toStruct(v)
	if err != nil {
		slog.Error("failed to encode grpc reply", "error", err)
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}
