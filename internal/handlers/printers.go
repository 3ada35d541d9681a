package handlers

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"printhub/console/internal/backend"
	"printhub/console/internal/fleet"
	"printhub/console/internal/models"
	"printhub/console/internal/session"
	"printhub/console/internal/views"
)

const DefaultScanSubnet = "192.168.1.0/24"

func (h HandlerSet) ListPrinters(c *gin.Context) {
	s := session.From(c)
	owner := s.Owner()

	data := views.PrintersData{Threshold: h.monitor.Threshold(), Subnet: DefaultScanSubnet}
	entries, err := h.monitor.Loaded(c.Request.Context(), owner, h.caller(c))
	if err != nil {
		data.ListError = backend.UserMessage(err, "Could not load printers")
	}
	_, data.RefreshedAt, _ = h.monitor.Collection(owner).State()
	data.Entries = entries

	p := h.page(c, "Printers", "printers")
	p.Data = data
	c.HTML(http.StatusOK, "printers", p)
}

// RefreshFleet re-runs the full listing and status pass.
func (h HandlerSet) RefreshFleet(c *gin.Context) {
	owner := session.From(c).Owner()
	if _, err := h.monitor.Cycle(c.Request.Context(), owner, h.caller(c)); err != nil {
		h.flash(c, session.FlashError, backend.UserMessage(err, "Could not load printers"))
	}
	c.Redirect(http.StatusSeeOther, "/printers")
}

func (h HandlerSet) PrinterDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c, "Printer not found")
		return
	}

	owner := session.From(c).Owner()
	if _, err := h.monitor.Loaded(c.Request.Context(), owner, h.caller(c)); err != nil {
		p := h.page(c, "Printer", "printers")
		p.Error = backend.UserMessage(err, "Could not load printers")
		c.HTML(http.StatusBadGateway, "error", p)
		return
	}
	entry, found := h.monitor.Collection(owner).Get(id)
	if !found {
		h.notFound(c, "Printer not found")
		return
	}

	p := h.page(c, entry.DisplayName(), "printers")
	p.Data = views.PrinterData{Entry: entry, Threshold: h.monitor.Threshold()}
	c.HTML(http.StatusOK, "printer", p)
}

// RefreshPrinter re-fetches the status of one printer; the rest of the
// collection is untouched.
func (h HandlerSet) RefreshPrinter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c, "Printer not found")
		return
	}

	owner := session.From(c).Owner()
	api := h.caller(c)
	if _, err := h.monitor.Loaded(c.Request.Context(), owner, api); err != nil {
		h.flash(c, session.FlashError, backend.UserMessage(err, "Could not load printers"))
		c.Redirect(http.StatusSeeOther, "/printers")
		return
	}

	entry, err := h.monitor.RefreshPrinter(c.Request.Context(), owner, api, id)
	switch {
	case errors.Is(err, fleet.ErrUnknownPrinter):
		h.flash(c, session.FlashError, "Printer not found")
	case err != nil:
		h.flash(c, session.FlashError, backend.UserMessage(err, "Refresh failed"))
	case !entry.Status.OK():
		h.flash(c, session.FlashError, fmt.Sprintf("%s: %s", entry.DisplayName(), entry.Status.Reason()))
	default:
		h.flash(c, session.FlashSuccess, fmt.Sprintf("%s refreshed", entry.DisplayName()))
	}
	c.Redirect(http.StatusSeeOther, returnPath(c, "/printers"))
}

func (h HandlerSet) DeletePrinter(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		h.notFound(c, "Printer not found")
		return
	}

	owner := session.From(c).Owner()
	if err := h.caller(c).DeletePrinter(c.Request.Context(), id); err != nil {
		h.log.Warn().Err(err).Int("printer_id", id).Msg("delete printer failed")
		h.flash(c, session.FlashError, backend.UserMessage(err, "Delete failed"))
		c.Redirect(http.StatusSeeOther, "/printers")
		return
	}

	h.monitor.Collection(owner).Remove(id)
	h.flash(c, session.FlashSuccess, "Printer deleted")
	c.Redirect(http.StatusSeeOther, "/printers")
}

func (h HandlerSet) ScanSubnet(c *gin.Context) {
	subnet := strings.TrimSpace(c.PostForm("subnet"))
	if subnet == "" {
		subnet = DefaultScanSubnet
	}
	if _, _, err := net.ParseCIDR(subnet); err != nil {
		h.flash(c, session.FlashError, fmt.Sprintf("Invalid subnet %q, expected CIDR like %s", subnet, DefaultScanSubnet))
		c.Redirect(http.StatusSeeOther, "/printers")
		return
	}

	owner := session.From(c).Owner()
	found, err := h.caller(c).Scan(c.Request.Context(), subnet)
	if err != nil {
		h.flash(c, session.FlashError, backend.UserMessage(err, "Scan failed"))
		c.Redirect(http.StatusSeeOther, "/printers")
		return
	}

	h.log.Info().Str("subnet", subnet).Int("discovered", found).Msg("subnet scanned")
	h.monitor.Forget(owner)
	h.flash(c, session.FlashSuccess, fmt.Sprintf("Discovered %d printers", found))
	c.Redirect(http.StatusSeeOther, "/printers")
}

func (h HandlerSet) AddPrinterForm(c *gin.Context) {
	p := h.page(c, "Add printer", "add-printer")
	p.Data = views.AddPrinterForm{
		ConnectionMode: string(models.ConnectionModeWeb),
		SNMPCommunity:  models.DefaultSNMPCommunity,
	}
	c.HTML(http.StatusOK, "add_printer", p)
}

func (h HandlerSet) AddPrinter(c *gin.Context) {
	form := views.AddPrinterForm{
		IP:             strings.TrimSpace(c.PostForm("ip")),
		Model:          strings.TrimSpace(c.PostForm("model")),
		ConnectionMode: c.PostForm("connection_mode"),
		SNMPCommunity:  strings.TrimSpace(c.PostForm("snmp_community")),
	}
	in := backend.AddPrinterInput{
		IP:             form.IP,
		Model:          form.Model,
		ConnectionMode: models.ConnectionMode(form.ConnectionMode),
		SNMPCommunity:  form.SNMPCommunity,
	}.WithDefaults()

	fail := func(status int, message string) {
		p := h.page(c, "Add printer", "add-printer")
		p.Error = message
		p.Data = form
		c.HTML(status, "add_printer", p)
	}

	if in.IP == "" {
		fail(http.StatusUnprocessableEntity, "IP address is required")
		return
	}
	if !in.ConnectionMode.Valid() {
		fail(http.StatusUnprocessableEntity, "Connection mode must be web or snmp")
		return
	}

	created, err := h.caller(c).AddPrinter(c.Request.Context(), in)
	if err != nil {
		h.log.Warn().Err(err).Str("ip", in.IP).Msg("add printer failed")
		fail(http.StatusOK, backend.UserMessage(err, "Add failed"))
		return
	}

	h.monitor.Forget(session.From(c).Owner())

	delay := h.cfg.Fleet.RedirectDelay
	if delay <= 0 {
		delay = 1500 * time.Millisecond
	}
	p := h.page(c, "Printer added", "add-printer")
	p.Data = views.PrinterAddedData{
		Printer:        created,
		Target:         "/printers",
		RedirectAfter:  delay,
		RedirectMillis: delay.Milliseconds(),
	}
	c.HTML(http.StatusOK, "printer_added", p)
}

// returnPath honours a same-site "return" form field.
func returnPath(c *gin.Context, fallback string) string {
	if ret := c.PostForm("return"); strings.HasPrefix(ret, "/printers") && !strings.HasPrefix(ret, "//") {
		return ret
	}
	return fallback
}
