package grpcapi

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joesantos1/querodesconto-parceiros/internal/delivery/http/middleware"
	"github.com/joesantos1/querodesconto-parceiros/internal/domain"
	"github.com/joesantos1/querodesconto-parceiros/internal/infrastructure/memory"
	"github.com/joesantos1/querodesconto-parceiros/internal/usecase"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const secret = "grpc-secret"

type fixture struct {
	conn     *grpc.ClientConn
	client   *RedemptionClient
	owner    *domain.User
	customer *domain.User
	code     string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := memory.NewRepository()
	f := &fixture{}
	f.owner = repo.PutUser(&domain.User{Name: "Ana Souza", Email: "ana@padaria.com", Role: domain.RoleLojista})
	f.customer = repo.PutUser(&domain.User{Name: "Carlos Lima", Email: "carlos@mail.com", Role: domain.RoleUser})

	store := &domain.Store{Name: "Padaria Central", Status: domain.StoreActive}
	if err := repo.CreateStore(ctx, store, f.owner.ID); err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	campaign := &domain.Campaign{StoreID: store.ID, Title: "Semana do pão", StartsAt: now.Add(-time.Hour), EndsAt: now.Add(24 * time.Hour), Status: domain.CampaignActive}
	if err := repo.CreateCampaign(ctx, campaign); err != nil {
		t.Fatal(err)
	}
	coupon := &domain.Coupon{
		CampaignID: campaign.ID, StoreID: store.ID, Code: "PAO10OFF", Type: domain.DiscountFixed,
		Value: decimal.NewFromInt(10), Quantity: 2, ValidityDays: 3, Status: domain.CouponActive,
	}
	if err := repo.CreateCoupon(ctx, coupon); err != nil {
		t.Fatal(err)
	}
	catalog, err := usecase.NewDefaultCatalogUsecase(repo, repo, repo, repo, repo, nil, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	ci, err := catalog.Claim(ctx, coupon.ID, f.customer.ID)
	if err != nil {
		t.Fatal(err)
	}
	f.code = ci.Code

	validation := usecase.NewDefaultValidationUsecase(repo, repo, repo, repo, repo, repo, nil, nil, nil)
	srv, _ := NewServer(middleware.NewAuthenticator(secret, "", nil), NewRedemptionHandler(validation))

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	f.conn = conn
	f.client = NewRedemptionClient(conn)
	return f
}

func withToken(t *testing.T, u *domain.User) context.Context {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+tok)
}

func req(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestResolveAndConfirmOverGRPC(t *testing.T) {
	f := setup(t)
	ctx := withToken(t, f.owner)

	out, err := f.client.Resolve(ctx, req(t, map[string]any{"codigo": f.code}))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	usuario := out.GetFields()["usuario"].GetStructValue()
	if got := usuario.GetFields()["email"].GetStringValue(); got != "carlos@mail.com" {
		t.Fatalf("usuario.email = %q", got)
	}

	out, err = f.client.ConfirmUse(ctx, req(t, map[string]any{"codigo": f.code, "userEmail": "carlos@mail.com"}))
	if err != nil {
		t.Fatalf("ConfirmUse: %v", err)
	}
	if s := out.GetFields()["status"].GetNumberValue(); s != float64(domain.InstanceUsed) {
		t.Fatalf("status = %v", s)
	}

	_, err = f.client.ConfirmUse(ctx, req(t, map[string]any{"codigo": f.code}))
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("second confirm = %v, want AlreadyExists", err)
	}

	out, err = f.client.LastValidated(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(out.GetFields()["validados"].GetListValue().GetValues()); n != 1 {
		t.Fatalf("validados = %d", n)
	}
}

func TestGRPCAuthAndErrors(t *testing.T) {
	f := setup(t)

	_, err := f.client.Resolve(context.Background(), req(t, map[string]any{"codigo": f.code}))
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("no token = %v", err)
	}
	_, err = f.client.Resolve(withToken(t, f.customer), req(t, map[string]any{"codigo": f.code}))
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("customer token = %v", err)
	}
	_, err = f.client.Resolve(withToken(t, f.owner), req(t, map[string]any{"codigo": "ZZZZZZZZ"}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("unknown code = %v", err)
	}
	_, err = f.client.Resolve(withToken(t, f.owner), &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("missing code = %v", err)
	}
}

func TestHealthService(t *testing.T) {
	f := setup(t)
	resp, err := healthpb.NewHealthClient(f.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		t.Fatal(err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("status = %v", resp.GetStatus())
	}
}
