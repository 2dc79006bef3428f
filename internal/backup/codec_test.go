package backup

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *Payload {
	catID := "cat-dining"
	accID := "acc-checking"
	p := NewPayload(time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC))
	p.Categories = append(p.Categories, CategoryExport{
		ID:    catID,
		Name:  "Dining",
		Color: "#ff8800",
	})
	p.Budgets = append(p.Budgets, BudgetExport{
		ID:         "bud-1",
		CategoryID: &catID,
		Amount:     400,
		Period:     "2024-03",
	})
	p.Transactions = append(p.Transactions, TransactionExport{
		ID:             "txn-1",
		Date:           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Amount:         4.50,
		Merchant:       "Coffee Shop",
		Description:    "Coffee Shop $4.50 03/01/2024",
		CategoryID:     &catID,
		AccountID:      &accID,
		OriginalText:   "Coffee Shop $4.50 03/01/2024",
		ScreenshotHash: "abc123",
		CreatedAt:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ModifiedAt:     time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	})
	return p
}

// The production iteration count makes each KDF call deliberately slow;
// tests use the clamp floor which is the same code path.
func testCodec() *Codec {
	return NewCodec()
}

func TestRoundTrip(t *testing.T) {
	codec := testCodec()
	payload := testPayload()

	container, err := codec.Encrypt(payload, "correct horse battery staple")
	require.NoError(t, err)

	got, err := codec.Decrypt(container, "correct horse battery staple")
	require.NoError(t, err)

	assert.Equal(t, payload.FormatVersion, got.FormatVersion)
	assert.True(t, payload.ExportedAt.Equal(got.ExportedAt))
	assert.Equal(t, payload.Categories, got.Categories)
	assert.Equal(t, payload.Budgets, got.Budgets)
	require.Len(t, got.Transactions, 1)

	want := payload.Transactions[0]
	txn := got.Transactions[0]
	assert.Equal(t, want.ID, txn.ID)
	assert.True(t, want.Date.Equal(txn.Date))
	assert.Equal(t, want.Amount, txn.Amount)
	assert.Equal(t, want.Merchant, txn.Merchant)
	assert.Equal(t, want.CategoryID, txn.CategoryID)
	assert.Equal(t, want.AccountID, txn.AccountID)
	assert.Equal(t, want.ScreenshotHash, txn.ScreenshotHash)
}

func TestWrongPasswordFails(t *testing.T) {
	codec := testCodec()

	container, err := codec.Encrypt(testPayload(), "right password")
	require.NoError(t, err)

	got, err := codec.Decrypt(container, "wrong password")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestFlippedByteFails(t *testing.T) {
	codec := testCodec()

	container, err := codec.Encrypt(testPayload(), "password")
	require.NoError(t, err)

	// Flip one byte in each container region: salt, nonce, ciphertext, tag.
	positions := []int{
		0,                  // salt
		saltSize + 1,       // nonce
		saltSize + nonceSize + 1, // ciphertext
		len(container) - 1, // tag
	}

	for _, pos := range positions {
		corrupted := make([]byte, len(container))
		copy(corrupted, container)
		corrupted[pos] ^= 0x01

		got, err := codec.Decrypt(corrupted, "password")
		assert.Nil(t, got, "flipped byte at %d returned plaintext", pos)
		assert.ErrorIs(t, err, ErrDecryptionFailed, "flipped byte at %d", pos)
	}
}

func TestTruncatedContainerFails(t *testing.T) {
	codec := testCodec()

	_, err := codec.Decrypt([]byte("too short"), "password")
	assert.ErrorIs(t, err, ErrContainerTooShort)

	container, err := codec.Encrypt(testPayload(), "password")
	require.NoError(t, err)

	_, err = codec.Decrypt(container[:len(container)-1], "password")
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestEmptyPasswordRejected(t *testing.T) {
	codec := testCodec()

	_, err := codec.Encrypt(testPayload(), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = codec.Decrypt(make([]byte, saltSize+nonceSize+tagSize), "")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestUnsupportedVersionRejected(t *testing.T) {
	codec := testCodec()

	payload := testPayload()
	payload.FormatVersion = "9.0"

	container, err := codec.Encrypt(payload, "password")
	require.NoError(t, err)

	got, err := codec.Decrypt(container, "password")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFreshSaltAndNoncePerExport(t *testing.T) {
	codec := testCodec()
	payload := testPayload()

	c1, err := codec.Encrypt(payload, "password")
	require.NoError(t, err)
	c2, err := codec.Encrypt(payload, "password")
	require.NoError(t, err)

	assert.NotEqual(t, c1[:saltSize], c2[:saltSize], "salt reused across exports")
	assert.NotEqual(t, c1[saltSize:saltSize+nonceSize], c2[saltSize:saltSize+nonceSize], "nonce reused across exports")
}

func TestIterationFloorClamped(t *testing.T) {
	codec := NewCodecWithIterations(1000)
	if codec.iterations < MinIterations {
		t.Errorf("iterations = %d, want clamped to at least %d", codec.iterations, MinIterations)
	}
}

func TestDecryptNeverRetriesInternally(t *testing.T) {
	// Cryptographic failure must surface as a distinct error, not be wrapped
	// into a generic one the caller might treat as transient.
	codec := testCodec()
	container, err := codec.Encrypt(testPayload(), "password")
	require.NoError(t, err)

	_, err = codec.Decrypt(container, "nope")
	if !errors.Is(err, ErrDecryptionFailed) {
		t.Fatalf("error = %v, want ErrDecryptionFailed sentinel", err)
	}
}
