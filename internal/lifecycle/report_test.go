package lifecycle_test

import (
	"encoding/json"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/audit"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/lifecycle"
	"github.com/ahmetcoskunkizilkaya/moderation-service/internal/models"
	"github.com/google/uuid"
)

func newReportInput() lifecycle.NewReport {
	return lifecycle.NewReport{
		ReporterUserID: uuid.New(),
		ReportedEntity: models.EntityRef{Type: models.EntityListing, ID: 4211},
		ReportType:     models.ReportTypeFakeListing,
		PriorityLevel:  models.SeverityHigh,
		Title:          "Listing photos belong to another property",
		Description:    "Same photos appear on a different listing in another city.",
		Evidences: []lifecycle.NewEvidence{{
			EvidenceType: models.EvidenceScreenshot,
			FileURL:      "https://cdn.example.com/e/1.png",
			FileSize:     20480,
			MimeType:     "image/png",
			Metadata:     json.RawMessage(`{"width":1280}`),
		}},
	}
}

var _ = Describe("ReportMachine", func() {
	var (
		machine *lifecycle.ReportMachine
		admin   uuid.UUID
	)

	BeforeEach(func() {
		machine = lifecycle.NewReportMachine(nil, tickingClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)))
		admin = uuid.New()
	})

	Describe("Open", func() {
		It("starts PENDING with a single automated CREATED record", func() {
			r, err := machine.Open(newReportInput())
			Expect(err).NotTo(HaveOccurred())

			Expect(r.Status).To(Equal(models.ReportPending))
			Expect(r.ResolvedAt).To(BeNil())
			Expect(r.Evidences).To(HaveLen(1))
			Expect(r.Evidences[0].ReportID).To(Equal(r.ID))
			Expect(string(r.Evidences[0].Metadata)).To(MatchJSON(`{"width":1280}`))

			Expect(r.Audits).To(HaveLen(1))
			Expect(r.Audits[0].Action).To(Equal(models.ReportActionCreated))
			Expect(r.Audits[0].PreviousStatus).To(BeNil())
			Expect(r.Audits[0].IsAutomated).To(BeTrue())
			Expect(r.Audits[0].Notes).To(Equal("Report created"))
		})

		DescribeTable("rejects malformed input",
			func(mutate func(*lifecycle.NewReport)) {
				in := newReportInput()
				mutate(&in)
				_, err := machine.Open(in)
				Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			},
			Entry("missing reporter", func(in *lifecycle.NewReport) { in.ReporterUserID = uuid.Nil }),
			Entry("blank title", func(in *lifecycle.NewReport) { in.Title = "  " }),
			Entry("title too long", func(in *lifecycle.NewReport) { in.Title = strings.Repeat("x", 501) }),
			Entry("blank description", func(in *lifecycle.NewReport) { in.Description = "" }),
			Entry("unknown entity type", func(in *lifecycle.NewReport) { in.ReportedEntity.Type = "POST" }),
			Entry("unknown priority", func(in *lifecycle.NewReport) { in.PriorityLevel = "URGENT" }),
			Entry("evidence without url", func(in *lifecycle.NewReport) { in.Evidences[0].FileURL = "" }),
			Entry("evidence metadata not json", func(in *lifecycle.NewReport) {
				in.Evidences[0].Metadata = json.RawMessage(`{oops`)
			}),
		)
	})

	Describe("Assign", func() {
		It("records a no-op status change with the default note", func() {
			r, _ := machine.Open(newReportInput())
			created := r.UpdatedAt

			Expect(machine.Assign(r, admin, "")).To(Succeed())

			Expect(*r.AssignedAdminID).To(Equal(admin))
			Expect(r.Status).To(Equal(models.ReportPending))
			Expect(r.UpdatedAt).To(BeTemporally(">", created))
			entry := r.Audits[1]
			Expect(entry.Action).To(Equal(models.ReportActionAssigned))
			Expect(*entry.PreviousStatus).To(Equal(models.ReportPending))
			Expect(entry.NewStatus).To(Equal(models.ReportPending))
			Expect(entry.Notes).To(Equal("Report assigned to admin"))
		})

		It("requires an admin", func() {
			r, _ := machine.Open(newReportInput())
			Expect(apperr.IsCode(machine.Assign(r, uuid.Nil, ""), apperr.CodeValidation)).To(BeTrue())
			Expect(r.Audits).To(HaveLen(1))
		})
	})

	Describe("Resolve", func() {
		It("stamps resolved_at only once", func() {
			r, _ := machine.Open(newReportInput())

			Expect(machine.Resolve(r, admin, "listing removed")).To(Succeed())
			first := *r.ResolvedAt

			Expect(machine.Resolve(r, admin, "confirmed again")).To(Succeed())
			Expect(*r.ResolvedAt).To(Equal(first))
			Expect(r.ResolutionNotes).To(Equal("confirmed again"))
			Expect(r.Audits).To(HaveLen(3))
			Expect(audit.Ordered(r.Audits)).To(BeTrue())
		})

		It("records the status held before resolving", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.Transition(r, models.ReportUnderReview, admin, "")).To(Succeed())
			Expect(machine.Resolve(r, admin, "warned seller")).To(Succeed())

			entry := r.Audits[len(r.Audits)-1]
			Expect(entry.Action).To(Equal(models.ReportActionResolved))
			Expect(*entry.PreviousStatus).To(Equal(models.ReportUnderReview))
			Expect(entry.NewStatus).To(Equal(models.ReportResolved))
		})

		It("keeps the first resolved_at when reached again through Transition", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.Transition(r, models.ReportResolved, admin, "")).To(Succeed())
			first := *r.ResolvedAt
			Expect(machine.Transition(r, models.ReportInReview, admin, "reopened")).To(Succeed())
			Expect(machine.Transition(r, models.ReportResolved, admin, "")).To(Succeed())
			Expect(*r.ResolvedAt).To(Equal(first))
		})

		It("requires resolution notes", func() {
			r, _ := machine.Open(newReportInput())
			err := machine.Resolve(r, admin, "   ")
			Expect(apperr.IsCode(err, apperr.CodeValidation)).To(BeTrue())
			Expect(r.Status).To(Equal(models.ReportPending))
			Expect(r.ResolvedAt).To(BeNil())
		})
	})

	Describe("Reject", func() {
		It("moves to REJECTED with the reason as notes", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.Reject(r, admin, "duplicate of an earlier report")).To(Succeed())

			entry := r.Audits[1]
			Expect(r.Status).To(Equal(models.ReportRejected))
			Expect(entry.Action).To(Equal(models.ReportActionStatusChanged))
			Expect(entry.Notes).To(Equal("duplicate of an earlier report"))
		})

		It("requires a reason", func() {
			r, _ := machine.Open(newReportInput())
			Expect(apperr.IsCode(machine.Reject(r, admin, ""), apperr.CodeValidation)).To(BeTrue())
		})
	})

	Describe("VerifyEvidence", func() {
		It("flags the evidence without touching status or trail", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.VerifyEvidence(r, r.Evidences[0].ID, "matches upload")).To(Succeed())

			Expect(r.Evidences[0].IsVerified).To(BeTrue())
			Expect(r.Evidences[0].VerificationNotes).To(Equal("matches upload"))
			Expect(r.Status).To(Equal(models.ReportPending))
			Expect(r.Audits).To(HaveLen(1))
		})

		It("reports foreign evidence as not found", func() {
			r, _ := machine.Open(newReportInput())
			err := machine.VerifyEvidence(r, uuid.New(), "")
			Expect(apperr.IsCode(err, apperr.CodeNotFound)).To(BeTrue())
		})
	})

	Context("with the strict graph", func() {
		BeforeEach(func() {
			machine = lifecycle.NewReportMachine(lifecycle.ReportGraph, nil)
		})

		It("refuses to reopen a resolved report", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.Resolve(r, admin, "done")).To(Succeed())

			err := machine.Transition(r, models.ReportPending, admin, "")
			Expect(apperr.IsCode(err, apperr.CodeConflict)).To(BeTrue())
			Expect(r.Status).To(Equal(models.ReportResolved))
			Expect(r.Audits).To(HaveLen(2))
		})

		It("lets a resolved report be resolved again", func() {
			r, _ := machine.Open(newReportInput())
			Expect(machine.Resolve(r, admin, "done")).To(Succeed())
			Expect(machine.Resolve(r, admin, "still done")).To(Succeed())
		})
	})
})
