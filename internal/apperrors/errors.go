package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInsufficientFunds indicates that a debit would drive a savings account balance below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidOperation indicates an operation that is never permitted, such as a same-account transfer.
var ErrInvalidOperation = errors.New("operation not permitted")

// ErrAccountNotActive indicates that the account status forbids debits and credits.
var ErrAccountNotActive = errors.New("account is not active")

// ErrCannotCancel indicates an attempt to cancel an account whose balance is not zero.
var ErrCannotCancel = errors.New("account cannot be cancelled")

// ErrAllocationExhausted indicates the account number allocator ran out of attempts.
var ErrAllocationExhausted = errors.New("account number allocation exhausted")

// ErrConflict indicates a concurrent modification was detected and retries were exhausted.
var ErrConflict = errors.New("concurrent modification conflict")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")
