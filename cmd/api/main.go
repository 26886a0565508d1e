package main

import (
	"os"
	"time"

	"app/internal/cache"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/logger"
	"app/internal/server"
	"app/internal/usecase"
	auth "app/internal/usecase/auth_usecase"
	pos "app/internal/usecase/pos_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func newJWTIssuer(secret string) *jwtIssuer {
	//アクセストークン
	return &jwtIssuer{
		secret:    []byte(secret),
		accessTTL: 15 * time.Minute,
	}
}

func (i *jwtIssuer) Issue(userID int64, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub": userID,
		"tv":  tokenVersion,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Options{
		Service: "pos-api",
		Env:     cfg.GoEnv,
		Level:   os.Getenv("LOG_LEVEL"),
	})

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderRelationship{},
		&model.InventoryAdjustment{},
		&model.Customer{},
	); err != nil {
		panic(err)
	}

	//商品キャッシュ用Redis
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	productCache := cache.NewRedisCache(redisClient)

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	relationshipRepo := infraRepo.NewOrderRelationshipGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := newJWTIssuer(cfg.JWTSecret)

	//refresh TTL
	refreshTTL := 14 * 24 * time.Hour

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(userRepo, rtRepo, clock)
	meUC := auth.NewMeUsecase(userRepo)

	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, productCache, log)
	reportUC := usecase.NewReportUsecase(orderRepo, orderItemRepo, relationshipRepo, nil)
	customerUC := usecase.NewCustomerUsecase(customerRepo)

	//POSエンジン
	engine := pos.NewEngine(
		productRepo,
		inventoryRepo,
		orderRepo,
		orderItemRepo,
		relationshipRepo,
		productCache,
		log,
		cfg.TaxRatePercent,
	)

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, meUC, refreshTTL)
	productH := handler.NewProductHandler(productUC)
	posH := handler.NewPosHandler(engine)
	reportH := handler.NewReportHandler(reportUC)
	customerH := handler.NewCustomerHandler(customerUC)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	log.Info("starting server", "addr", addr)
	if err := server.Start(addr, server.Deps{
		Cfg:       cfg,
		UserRepo:  userRepo,
		AuthH:     authH,
		ProductH:  productH,
		PosH:      posH,
		ReportH:   reportH,
		CustomerH: customerH,
		Log:       log,
	}); err != nil {
		panic(err)
	}
}
