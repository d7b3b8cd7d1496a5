package vsphere

import (
	"context"
	"fmt"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/session"
	"github.com/vmware/govmomi/session/keepalive"
	"github.com/vmware/govmomi/vim25"
	"github.com/vmware/govmomi/vim25/methods"
	"github.com/vmware/govmomi/vim25/soap"
	vimtypes "github.com/vmware/govmomi/vim25/types"

	"github.com/jbweber/vmclone/internal/config"
)

// Idle time before a keepalive will be invoked. Long clones can otherwise
// outlive the session.
const keepAliveIdleTime = 5 * time.Minute

// Client wraps a govmomi connection bound to a single datacenter and
// provides high-level operations for cloning VMs.
type Client struct {
	vim        *vim25.Client
	session    *session.Manager
	finder     *find.Finder
	datacenter *object.Datacenter
}

// Connect logs in to the vCenter described by conn and binds the client to
// conn.Datacenter, or the default datacenter when it is empty.
// The returned Client must be closed via Close() when done.
func Connect(ctx context.Context, conn *config.Connection) (*Client, error) {
	u, err := soap.ParseURL(conn.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse url %q: %w", conn.URL, err)
	}
	if conn.Username != "" {
		u.User = url.UserPassword(conn.Username, conn.Password)
	}

	sc := soap.NewClient(u, conn.Insecure)
	if conn.CAFile != "" {
		if err := sc.SetRootCAs(conn.CAFile); err != nil {
			return nil, fmt.Errorf("failed to set root CA %s: %w", conn.CAFile, err)
		}
	}

	vc, err := vim25.NewClient(ctx, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vCenter at %s: %w", u.Host, err)
	}

	sm := session.NewManager(vc)
	vc.RoundTripper = keepalive.NewHandlerSOAP(sc, keepAliveIdleTime, keepAliveHandler(sc, sm, u.User))

	if err := sm.Login(ctx, u.User); err != nil {
		return nil, fmt.Errorf("login failed for %s: %w", u.Host, err)
	}

	c, err := NewClient(ctx, vc, conn.Datacenter)
	if err != nil {
		_ = sm.Logout(context.WithoutCancel(ctx))
		return nil, err
	}
	c.session = sm

	log.WithFields(log.Fields{
		"host":       u.Host,
		"datacenter": c.datacenter.InventoryPath,
	}).Debug("Connected to vCenter")

	return c, nil
}

// NewClient wraps an authenticated vim25 client. Close on the result does
// not log the session out.
func NewClient(ctx context.Context, vc *vim25.Client, datacenter string) (*Client, error) {
	finder := find.NewFinder(vc, true)

	dc, err := finder.DatacenterOrDefault(ctx, datacenter)
	if err != nil {
		return nil, fmt.Errorf("failed to find datacenter %q: %w", datacenter, translate(err))
	}
	finder.SetDatacenter(dc)

	return &Client{
		vim:        vc,
		finder:     finder,
		datacenter: dc,
	}, nil
}

// keepAliveHandler re-authenticates when the session has expired.
func keepAliveHandler(sc *soap.Client, sm *session.Manager, user *url.Userinfo) func() error {
	return func() error {
		ctx := context.Background()
		_, err := methods.GetCurrentTime(ctx, sc)
		if err == nil {
			return nil
		}
		if !IsNotAuthenticated(err) {
			log.Warnf("vCenter keepalive failed: %v", err)
			return nil
		}

		log.Info("Re-authenticating vim client")
		if err := sm.Login(ctx, user); err != nil && IsInvalidLogin(err) {
			return err
		}
		return nil
	}
}

// Close logs out the session. It is safe to call Close multiple times.
func (c *Client) Close(ctx context.Context) error {
	if c.session == nil {
		return nil
	}

	sm := c.session
	c.session = nil
	if err := sm.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out of vCenter: %w", err)
	}

	return nil
}

// Vim returns the underlying vim25 client for direct API access.
// This should be used sparingly; prefer higher-level methods on Client.
func (c *Client) Vim() *vim25.Client {
	return c.vim
}

// Datacenter returns the datacenter lookups are relative to.
func (c *Client) Datacenter() *object.Datacenter {
	return c.datacenter
}

// Ping verifies the session is still alive with a server time round-trip.
func (c *Client) Ping(ctx context.Context) error {
	if c.vim == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := methods.GetCurrentTime(ctx, c.vim); err != nil {
		return fmt.Errorf("vCenter connection is dead: %w", err)
	}

	return nil
}

// About describes the connected endpoint.
func (c *Client) About() vimtypes.AboutInfo {
	return c.vim.ServiceContent.About
}
