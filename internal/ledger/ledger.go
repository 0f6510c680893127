package ledger

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/medichain/ledger-api/internal/kvstore"
	"github.com/medichain/ledger-api/internal/model"
	"github.com/medichain/ledger-api/pkg/errors"
	"github.com/medichain/ledger-api/pkg/metrics"
)

// Collection prefixes. New collections get the next byte; existing values
// are part of the on-disk format and must not change.
const (
	prefixPatients      byte = 0x01
	prefixDoctors       byte = 0x02
	prefixMedicines     byte = 0x03
	prefixAppointments  byte = 0x04
	prefixPrescriptions byte = 0x05
	prefixOrders        byte = 0x06
	prefixNotifications byte = 0x07
)

var (
	metaOwnerKey       = []byte{keyspaceMeta, 0x01}
	metaUsersKey       = []byte{keyspaceMeta, 0x02}
	metaCredentialsKey = []byte{keyspaceMeta, 0x03}
	metaFeesKey        = []byte{keyspaceMeta, 0x04}
)

// Ledger is the durable aggregate of all entity collections, counters,
// the owner identity, the registered-user set, account credentials and the
// two fee scalars. All mutation goes through Update, which serializes
// operations and commits each one as a single atomic batch.
type Ledger struct {
	mu    sync.RWMutex
	store kvstore.Store

	Patients      *Collection[model.Patient, *model.Patient]
	Doctors       *Collection[model.Doctor, *model.Doctor]
	Medicines     *Collection[model.Medicine, *model.Medicine]
	Appointments  *Collection[model.Appointment, *model.Appointment]
	Prescriptions *Collection[model.Prescription, *model.Prescription]
	Orders        *Collection[model.Order, *model.Order]
	Notifications *Collection[model.Notification, *model.Notification]

	owner       string
	users       map[string]bool
	credentials map[string]string
	fees        model.Fees

	metrics *metrics.Metrics
}

// Open loads the ledger meta state from the store.
func Open(store kvstore.Store) (*Ledger, error) {
	l := &Ledger{
		store:         store,
		Patients:      newCollection[model.Patient, *model.Patient](store, prefixPatients, "patient"),
		Doctors:       newCollection[model.Doctor, *model.Doctor](store, prefixDoctors, "doctor"),
		Medicines:     newCollection[model.Medicine, *model.Medicine](store, prefixMedicines, "medicine"),
		Appointments:  newCollection[model.Appointment, *model.Appointment](store, prefixAppointments, "appointment"),
		Prescriptions: newCollection[model.Prescription, *model.Prescription](store, prefixPrescriptions, "prescription"),
		Orders:        newCollection[model.Order, *model.Order](store, prefixOrders, "order"),
		Notifications: newCollection[model.Notification, *model.Notification](store, prefixNotifications, "notification"),
		users:         make(map[string]bool),
		credentials:   make(map[string]string),
	}

	if err := l.loadMeta(metaOwnerKey, &l.owner); err != nil {
		return nil, err
	}
	var users []string
	if err := l.loadMeta(metaUsersKey, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		l.users[u] = true
	}
	if err := l.loadMeta(metaCredentialsKey, &l.credentials); err != nil {
		return nil, err
	}
	if err := l.loadMeta(metaFeesKey, &l.fees); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) loadMeta(key []byte, out interface{}) error {
	data, err := l.store.Get(key)
	if err == kvstore.ErrKeyNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load ledger meta: %w", err)
	}
	return json.Unmarshal(data, out)
}

// Instrument attaches operation metrics. Call once at startup before the
// ledger serves traffic.
func (l *Ledger) Instrument(m *metrics.Metrics) {
	l.metrics = m
}

func (l *Ledger) observe(op string, start time.Time, err error) {
	if l.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	l.metrics.LedgerOperations.WithLabelValues(op, status).Inc()
	l.metrics.LedgerLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Update runs fn under the aggregate write lock and commits its staged
// writes atomically when fn returns nil. On error nothing is written.
func (l *Ledger) Update(fn func(tx *Tx) error) error {
	start := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.apply(fn)
	l.observe("update", start, err)
	return err
}

func (l *Ledger) apply(fn func(tx *Tx) error) error {
	tx := newTx()
	if err := fn(tx); err != nil {
		return err
	}
	if tx.batch.Len() > 0 {
		if err := l.store.Write(tx.batch); err != nil {
			return fmt.Errorf("failed to commit ledger batch: %w", err)
		}
	}
	for _, hook := range tx.onCommit {
		hook()
	}
	return nil
}

// View runs fn under the aggregate read lock.
func (l *Ledger) View(fn func() error) error {
	start := time.Now()
	l.mu.RLock()
	defer l.mu.RUnlock()

	err := fn()
	l.observe("view", start, err)
	return err
}

// Initialized reports whether Init has run.
func (l *Ledger) Initialized() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.owner != ""
}

// Init seeds the owner identity, an optional initial user set and the owner
// credential. It fails if the ledger already holds state.
func (l *Ledger) Init(owner string, users []string, ownerCredential string) error {
	if owner == "" {
		return errors.InvalidArgument("owner account is required", nil)
	}
	return l.Update(func(tx *Tx) error {
		if l.owner != "" {
			return errors.AlreadyInitialized("ledger already initialized")
		}
		l.putOwner(tx, owner)
		for _, u := range users {
			l.putUser(tx, u)
		}
		l.putCredential(tx, owner, ownerCredential)
		return nil
	})
}

// Owner returns the admin account id.
func (l *Ledger) Owner() string {
	return l.owner
}

// IsRegisteredUser reports membership in the registered-user set.
func (l *Ledger) IsRegisteredUser(accountID string) bool {
	return l.users[accountID]
}

// Credential returns the stored password hash for an account.
func (l *Ledger) Credential(accountID string) (string, bool) {
	hash, ok := l.credentials[accountID]
	return hash, ok
}

// Fees returns the current fee configuration.
func (l *Ledger) Fees() model.Fees {
	return l.fees
}

// PatientByAccount resolves the patient record that owns an account id.
// Like the collection accessors it must run inside View or Update.
func (l *Ledger) PatientByAccount(accountID string) (*model.Patient, error) {
	matches, err := l.Patients.Filter(func(p *model.Patient) bool {
		return p.AccountID == accountID
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, errors.NotFound("patient", nil)
	}
	return matches[0], nil
}

func (l *Ledger) putOwner(tx *Tx, owner string) {
	l.putMeta(tx, metaOwnerKey, owner)
	tx.OnCommit(func() { l.owner = owner })
}

// SetOwner transfers the admin identity. Authorization is the caller's job.
func (l *Ledger) SetOwner(tx *Tx, owner string) error {
	if owner == "" {
		return errors.InvalidArgument("owner account is required", nil)
	}
	l.putOwner(tx, owner)
	return nil
}

// RegisterUser adds an account to the registered-user set.
func (l *Ledger) RegisterUser(tx *Tx, accountID string) {
	l.putUser(tx, accountID)
}

func (l *Ledger) putUser(tx *Tx, accountID string) {
	if tx.users == nil {
		tx.users = make(map[string]bool, len(l.users)+1)
		for u := range l.users {
			tx.users[u] = true
		}
	}
	tx.users[accountID] = true
	users := make([]string, 0, len(tx.users))
	for u := range tx.users {
		users = append(users, u)
	}
	l.putMeta(tx, metaUsersKey, users)
	tx.OnCommit(func() { l.users[accountID] = true })
}

// SetCredential stores the password hash for an account.
func (l *Ledger) SetCredential(tx *Tx, accountID, hash string) {
	l.putCredential(tx, accountID, hash)
}

func (l *Ledger) putCredential(tx *Tx, accountID, hash string) {
	if tx.credentials == nil {
		tx.credentials = make(map[string]string, len(l.credentials)+1)
		for k, v := range l.credentials {
			tx.credentials[k] = v
		}
	}
	tx.credentials[accountID] = hash
	l.putMeta(tx, metaCredentialsKey, tx.credentials)
	tx.OnCommit(func() { l.credentials[accountID] = hash })
}

// SetRegistrationFee overwrites the registration fee, last write wins.
func (l *Ledger) SetRegistrationFee(tx *Tx, amount uint64) {
	fees := l.stagedFees(tx)
	fees.RegistrationFee = amount
	l.putFees(tx, fees)
}

// SetAppointmentFee overwrites the appointment fee, last write wins.
func (l *Ledger) SetAppointmentFee(tx *Tx, amount uint64) {
	fees := l.stagedFees(tx)
	fees.AppointmentFee = amount
	l.putFees(tx, fees)
}

func (l *Ledger) stagedFees(tx *Tx) model.Fees {
	if tx.fees != nil {
		return *tx.fees
	}
	return l.fees
}

func (l *Ledger) putFees(tx *Tx, fees model.Fees) {
	tx.fees = &fees
	l.putMeta(tx, metaFeesKey, fees)
	tx.OnCommit(func() { l.fees = fees })
}

func (l *Ledger) putMeta(tx *Tx, key []byte, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		// Meta values are plain strings, slices and maps; this cannot fail
		// for them, and a panic here means a programming error.
		panic(fmt.Sprintf("ledger: failed to encode meta value: %v", err))
	}
	tx.batch.Put(key, data)
}
