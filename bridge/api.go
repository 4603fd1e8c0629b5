package bridge

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/synology-community/dsm-mqtt-bridge/bridge/client"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/backup"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/core"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/dsm"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/externalusb"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/client/api/storage"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/coordinator"
	"github.com/synology-community/dsm-mqtt-bridge/bridge/entity"
)

// API is the snapshot accessor the entities are built from. It owns the
// latest snapshots and the per-API subscription registry, and fetches only
// the subsystems at least one entity listens to.
type API struct {
	client   *client.Client
	registry *coordinator.Registry
	logger   client.Logger

	mu   sync.RWMutex
	snap client.Snapshots
}

var _ entity.Source = (*API)(nil)

// NewAPI wraps a DSM client into a snapshot accessor.
func NewAPI(c *client.Client, logger client.Logger) *API {
	if logger == nil {
		logger = client.NopLogger
	}
	return &API{
		client:   c,
		registry: coordinator.NewRegistry(logger),
		logger:   logger,
	}
}

// Setup logs in, verifies the firmware version and populates the initial
// snapshots. With no subscriptions yet, everything is fetched.
func (a *API) Setup(ctx context.Context) error {
	if err := a.client.Login(ctx); err != nil {
		return err
	}
	if err := a.Update(ctx); err != nil {
		return err
	}
	info := a.Information()
	if info != nil {
		if err := client.CheckVersion(info); err != nil {
			return err
		}
	}
	return nil
}

// Update refreshes the snapshots of all subscribed subsystems. Information
// is always refreshed since it backs every device-identity record. Failed
// subsystems keep their previous snapshot; their errors are combined.
func (a *API) Update(ctx context.Context) error {
	var errs *multierror.Error
	next := a.Snapshots()

	if information, err := a.client.Information(ctx); err != nil {
		errs = multierror.Append(errs, err)
	} else {
		next.Information = information
	}
	if network, err := a.client.Network(ctx); err != nil {
		errs = multierror.Append(errs, err)
	} else {
		next.Network = network
	}

	if a.registry.Active(core.UtilizationAPI) {
		if utilization, err := a.client.Utilization(ctx); err != nil {
			errs = multierror.Append(errs, err)
		} else {
			next.Utilization = utilization
		}
	} else {
		a.logger.Debug("skipping unsubscribed api", "api", core.UtilizationAPI)
	}
	if a.registry.Active(storage.API) {
		if store, err := a.client.Storage(ctx); err != nil {
			errs = multierror.Append(errs, err)
		} else {
			next.Storage = store
		}
	} else {
		a.logger.Debug("skipping unsubscribed api", "api", storage.API)
	}
	if a.registry.Active(externalusb.API) {
		if usb, err := a.client.ExternalUSB(ctx); err != nil {
			errs = multierror.Append(errs, err)
		} else {
			next.ExternalUSB = usb
		}
	} else {
		a.logger.Debug("skipping unsubscribed api", "api", externalusb.API)
	}
	if a.registry.Active(backup.API) {
		if hyperBackup, err := a.client.HyperBackup(ctx); err != nil {
			errs = multierror.Append(errs, err)
		} else {
			next.HyperBackup = hyperBackup
		}
	} else {
		a.logger.Debug("skipping unsubscribed api", "api", backup.API)
	}

	a.mu.Lock()
	a.snap = next
	a.mu.Unlock()

	return errs.ErrorOrNil()
}

// Snapshots returns a copy of the current snapshot bundle.
func (a *API) Snapshots() client.Snapshots {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

// Logout terminates the DSM session.
func (a *API) Logout(ctx context.Context) error {
	return a.client.Logout(ctx)
}

// Information implements entity.Source.
func (a *API) Information() *dsm.Information {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Information
}

// Network implements entity.Source.
func (a *API) Network() *dsm.Network {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Network
}

// Storage implements entity.Source.
func (a *API) Storage() *storage.Storage {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.Storage
}

// ExternalUSB implements entity.Source.
func (a *API) ExternalUSB() *externalusb.ExternalUSB {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.ExternalUSB
}

// HyperBackup implements entity.Source.
func (a *API) HyperBackup() *backup.HyperBackup {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap.HyperBackup
}

// ConfigURL implements entity.Source.
func (a *API) ConfigURL() string {
	return a.client.ConfigURL()
}

// Subscribe implements entity.Source.
func (a *API) Subscribe(apiKey, uniqueID string) func() {
	return a.registry.Subscribe(apiKey, uniqueID)
}
