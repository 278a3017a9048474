package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studio-storefront/models"
	"studio-storefront/repository"
)

func newLeadFixture(t *testing.T, drive DriveServiceInterface) (*memoryLeadRepository, *models.Lead, *LeadService) {
	t.Helper()
	leads := newMemoryLeadRepository()
	lead := bundleLead(t, 10)
	require.NoError(t, leads.Create(context.Background(), lead))
	svc := NewLeadService(leads, &stubQuoteService{}, drive, NewWhatsAppService("Studio Luce", "3331234567"), "https://example.it")
	return leads, lead, svc
}

func TestLeadService_Lookups(t *testing.T) {
	_, lead, svc := newLeadFixture(t, nil)
	ctx := context.Background()

	byToken, err := svc.ByShareToken(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, lead.ID, byToken.ID)

	byID, err := svc.ByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, lead.ShareToken, byID.ShareToken)

	_, err = svc.ByShareToken(ctx, "nope")
	assert.ErrorIs(t, err, repository.ErrLeadNotFound)

	html, err := svc.RenderHTML(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, "<html>Giulia Bianchi</html>", html)

	pdf, _, err := svc.PDF(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-"+lead.ShareToken, string(pdf))
}

func TestLeadService_ListAndUpdateStatus(t *testing.T) {
	_, lead, svc := newLeadFixture(t, nil)
	ctx := context.Background()

	list, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, int64(2745), list.Leads[0].FinalTotal)

	updated, err := svc.UpdateStatus(ctx, lead.ID, models.LeadStatusContacted)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusContacted, updated.Status)

	list, err = svc.List(ctx, models.LeadStatusNew, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.NotNil(t, list.Leads)
}

func TestLeadService_WhatsApp(t *testing.T) {
	_, lead, svc := newLeadFixture(t, nil)

	resp, err := svc.WhatsApp(context.Background(), lead.ShareToken)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.Message, "Preventivo: https://example.it/quotes/"+lead.ShareToken+"/render"))
	assert.True(t, strings.HasPrefix(resp.URL, "https://wa.me/3331234567?text="))
}

func TestLeadService_Share(t *testing.T) {
	drive := &stubDrive{}
	leads, lead, svc := newLeadFixture(t, drive)
	ctx := context.Background()

	link, err := svc.Share(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, "https://drive.google.com/file/d/abc/view", link)
	require.Len(t, drive.uploads, 1)
	assert.True(t, strings.HasPrefix(drive.uploads[0], "Preventivo Giulia Bianchi 2025-"))

	stored, err := leads.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, link, stored.QuoteURL)
	assert.Equal(t, models.LeadStatusQuoted, stored.Status)

	// a second share reuses the stored link
	again, err := svc.Share(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, link, again)
	assert.Len(t, drive.uploads, 1)

	// the WhatsApp message now points at the shared document
	msg, err := svc.WhatsApp(ctx, lead.ShareToken)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(msg.Message, "Preventivo: "+link))
}

func TestLeadService_ShareDisabledAndFailing(t *testing.T) {
	_, lead, svc := newLeadFixture(t, nil)
	_, err := svc.Share(context.Background(), lead.ShareToken)
	assert.ErrorIs(t, err, ErrSharingDisabled)

	_, lead, failing := newLeadFixture(t, &stubDrive{err: errBoom})
	_, err = failing.Share(context.Background(), lead.ShareToken)
	assert.ErrorIs(t, err, errBoom)
}
