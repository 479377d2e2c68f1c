package sunft

import "errors"

// Kind groups errors by how a caller should react to them.
type Kind string

const (
	KindAuthorization    Kind = "authorization"
	KindInvalidAmount    Kind = "invalid_amount"
	KindInvalidArgument  Kind = "invalid_argument"
	KindAlreadyDestroyed Kind = "already_destroyed"
	KindExternalTransfer Kind = "external_transfer"
	KindNotFound         Kind = "not_found"
)

// Error is a sentinel carrying a kind and a stable machine-readable code.
// Wrap it with fmt.Errorf("...: %w", ErrX) to add context.
type Error struct {
	Kind Kind
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Msg: msg}
}

var (
	ErrNotCreator = newError(KindAuthorization, "not_creator", "caller is not the bundle creator")
	ErrNotOwner   = newError(KindAuthorization, "not_owner", "caller is not the bundle owner")
	ErrNotQueen   = newError(KindAuthorization, "not_queen", "caller is not the platform principal")

	ErrInvalidFeeAmount = newError(KindInvalidAmount, "invalid_fee_amount", "payment does not equal the minting fee")
	ErrZeroDeposit      = newError(KindInvalidAmount, "zero_deposit", "deposit amount must be positive")
	ErrInvalidAmount    = newError(KindInvalidAmount, "invalid_amount", "amount must be a non-negative whole number")

	ErrInvalidArgument = newError(KindInvalidArgument, "invalid_argument", "invalid argument")

	ErrBundleDestroyed  = newError(KindAlreadyDestroyed, "bundle_destroyed", "bundle is destroyed")
	ErrAlreadyDestroyed = newError(KindAlreadyDestroyed, "already_destroyed", "bundle is already destroyed")

	ErrAssetTransferDenied   = newError(KindExternalTransfer, "asset_transfer_denied", "asset transfer denied")
	ErrInsufficientAllowance = newError(KindExternalTransfer, "insufficient_allowance", "insufficient allowance")
	ErrTransferFailed        = newError(KindExternalTransfer, "transfer_failed", "payment transfer failed")

	ErrBundleNotFound = newError(KindNotFound, "bundle_not_found", "bundle not found")
	ErrItemNotFound   = newError(KindNotFound, "item_not_found", "item not found")
	ErrAssetNotFound  = newError(KindNotFound, "asset_not_found", "asset not found")
)

// KindOf returns the kind of the first sunft error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the code of the first sunft error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
