package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"swap-settlement/internal/infrastructure/config"
	otelinfra "swap-settlement/internal/infrastructure/observability/otel"
)

var (
	// ErrInvalidCredentials 署名またはタイムスタンプが不正
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken トークンが不正または期限切れ
	ErrInvalidToken = errors.New("invalid or expired token")
)

// LoginMessage 支払者が署名するログインメッセージ
func LoginMessage(timestamp int64) []byte {
	return []byte(fmt.Sprintf("swap-settlement:login:%d", timestamp))
}

// AuthApplicationService 認証アプリケーションサービス
type AuthApplicationService struct {
	jwtConfig *config.JWTConfig
	logger    *otelinfra.Logger
	now       func() time.Time
}

// NewAuthApplicationService 新しいAuthApplicationServiceを作成
func NewAuthApplicationService(jwtConfig *config.JWTConfig, logger *otelinfra.Logger) *AuthApplicationService {
	return &AuthApplicationService{
		jwtConfig: jwtConfig,
		logger:    logger,
		now:       time.Now,
	}
}

// GenerateToken ウォレット署名を検証してJWTトークンを生成
func (s *AuthApplicationService) GenerateToken(ctx context.Context, req *GenerateTokenRequest) (*GenerateTokenResponse, error) {
	tracer := otel.Tracer("auth-service")
	ctx, span := tracer.Start(ctx, "AuthApplicationService.GenerateToken")
	defer span.End()

	span.SetAttributes(
		attribute.String("payer", req.Payer),
	)

	now := s.now()
	if err := s.verify(req, now); err != nil {
		otelinfra.RecordSpanError(span, err)
		s.logger.Warn(ctx, "Login rejected", map[string]interface{}{
			"payer": req.Payer,
			"error": err.Error(),
		})
		return nil, err
	}

	expiresAt := now.Add(s.jwtConfig.Expiration)
	claims := jwt.MapClaims{
		"sub": req.Payer,
		"iss": s.jwtConfig.Issuer,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		otelinfra.RecordSpanError(span, err)
		s.logger.Error(ctx, "Failed to generate token", err, map[string]interface{}{
			"payer": req.Payer,
		})
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info(ctx, "Token generated successfully", map[string]interface{}{
		"payer":      req.Payer,
		"expires_at": expiresAt.Unix(),
	})

	return &GenerateTokenResponse{
		Token:     tokenString,
		ExpiresIn: int64(s.jwtConfig.Expiration.Seconds()),
		TokenType: "Bearer",
	}, nil
}

func (s *AuthApplicationService) verify(req *GenerateTokenRequest, now time.Time) error {
	payer, err := solana.PublicKeyFromBase58(req.Payer)
	if err != nil {
		return fmt.Errorf("%w: payer is not a valid address", ErrInvalidCredentials)
	}
	issued := time.Unix(req.Timestamp, 0)
	if issued.After(now.Add(s.jwtConfig.LoginWindow)) || now.Sub(issued) > s.jwtConfig.LoginWindow {
		return fmt.Errorf("%w: login message is outside the allowed window", ErrInvalidCredentials)
	}
	sig, err := solana.SignatureFromBase58(req.Signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature", ErrInvalidCredentials)
	}
	if !sig.Verify(payer, LoginMessage(req.Timestamp)) {
		return fmt.Errorf("%w: signature does not match payer", ErrInvalidCredentials)
	}
	return nil
}

// ParseToken トークンを検証し、支払者を返す
func ParseToken(cfg *config.JWTConfig, tokenString string) (solana.PublicKey, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムの確認
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return solana.PublicKey{}, ErrInvalidToken
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return solana.PublicKey{}, ErrInvalidToken
	}
	payer, err := solana.PublicKeyFromBase58(sub)
	if err != nil {
		return solana.PublicKey{}, ErrInvalidToken
	}
	return payer, nil
}
