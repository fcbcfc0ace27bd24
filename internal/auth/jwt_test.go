package auth

import (
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "ada"}
}

func TestGenerateAndValidate(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	user := testUser()

	token, claims, err := m.Generate(user)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), got.UserID)
	assert.Equal(t, "ada", got.Username)
	assert.Equal(t, claims.ID, got.ID)
}

func TestTokensHaveDistinctSessionIDs(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	user := testUser()
	_, a, err := m.Generate(user)
	require.NoError(t, err)
	_, b, err := m.Generate(user)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, _, err := m.Generate(testUser())
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	m := NewJWTManager("secret", time.Minute)
	token, _, err := m.Generate(testUser())
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsNoneAlgorithm(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	claims := &Claims{UserID: "x", RegisteredClaims: jwt.RegisteredClaims{ID: "jti"}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
