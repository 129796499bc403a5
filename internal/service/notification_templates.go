package service

import (
	"fmt"
	"strings"

	"github.com/noah-isme/volunteer-hub-api/internal/models"
)

const mailSignature = "\n\nCordialement,\nL'équipe des bénévoles"

func formatDay(d models.Date) string {
	if d.IsZero() {
		return "date à confirmer"
	}
	return d.Format("02/01/2006")
}

func valueOr(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}
	return *v
}

func newVolunteerAlert(recipient string, profile *models.Profile, appURL string) models.Notification {
	var b strings.Builder
	b.WriteString("Un nouveau bénévole vient de s'inscrire et attend votre approbation :\n\n")
	fmt.Fprintf(&b, "Nom complet : %s\n", profile.FullName)
	fmt.Fprintf(&b, "Email : %s\n", profile.Email)
	if profile.Phone != nil {
		fmt.Fprintf(&b, "Téléphone : %s\n", *profile.Phone)
	}
	b.WriteString("\nVeuillez vous connecter au tableau de bord administrateur pour réviser cette inscription.")
	if appURL != "" {
		fmt.Fprintf(&b, "\n%s/admin", appURL)
	}
	b.WriteString(mailSignature)
	return models.Notification{
		Kind:          models.NotificationAdminNewVolunteer,
		Recipient:     recipient,
		Subject:       "Nouvelle inscription bénévole en attente d'approbation",
		Body:          b.String(),
		ReferenceType: "profile",
		ReferenceID:   profile.ID,
	}
}

func profileDecisionMail(profile *models.Profile, approved bool, reason string) models.Notification {
	n := models.Notification{
		Recipient:     profile.Email,
		ReferenceType: "profile",
		ReferenceID:   profile.ID,
	}
	if approved {
		n.Kind = models.NotificationApproved
		n.Subject = "Votre inscription a été approuvée"
		n.Body = fmt.Sprintf("Bonjour %s,\n\nVotre profil bénévole a été approuvé. Vous pouvez désormais vous inscrire aux événements.%s", profile.FullName, mailSignature)
		return n
	}
	n.Kind = models.NotificationRejected
	n.Subject = "Votre inscription n'a pas été retenue"
	n.Body = fmt.Sprintf("Bonjour %s,\n\nVotre profil bénévole n'a pas été approuvé.\nMotif : %s\n\nVous pouvez corriger votre profil et le soumettre à nouveau.%s", profile.FullName, reason, mailSignature)
	return n
}

func eventCancelledMail(contact models.ProfileContact, event *models.Event) models.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", contact.FullName)
	fmt.Fprintf(&b, "Nous sommes au regret de vous informer que l'événement « %s » prévu le %s", event.Title, formatDay(event.Date))
	if event.Time != nil {
		fmt.Fprintf(&b, " à %s", *event.Time)
	}
	if event.Location != nil {
		fmt.Fprintf(&b, " (%s)", *event.Location)
	}
	b.WriteString(" a été annulé.\n\nNous nous excusons pour la gêne occasionnée.")
	b.WriteString(mailSignature)
	return models.Notification{
		Kind:          models.NotificationCancellation,
		Recipient:     contact.Email,
		Subject:       "Annulation de l'événement : " + event.Title,
		Body:          b.String(),
		ReferenceType: "event",
		ReferenceID:   event.ID,
	}
}

func trainingCancelledMail(contact models.ProfileContact, training *models.Training) models.Notification {
	body := fmt.Sprintf("Bonjour %s,\n\nNous sommes au regret de vous informer que la formation « %s » prévue le %s a été annulée.\n\nNous nous excusons pour la gêne occasionnée.%s",
		contact.FullName, training.Title, formatDay(training.Date), mailSignature)
	return models.Notification{
		Kind:          models.NotificationTrainingCancelled,
		Recipient:     contact.Email,
		Subject:       "Annulation de la formation : " + training.Title,
		Body:          body,
		ReferenceType: "training",
		ReferenceID:   training.ID,
	}
}

func attestationMail(req *models.AttestationRequest) models.Notification {
	outcome := "a été approuvée"
	if req.Status == models.AttestationRejected {
		outcome = "a été refusée"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\nVotre demande d'attestation (%s) %s.", valueOr(req.VolunteerName, ""), req.RequestType, outcome)
	if req.ResponseNotes != nil {
		fmt.Fprintf(&b, "\n\nCommentaire : %s", *req.ResponseNotes)
	}
	if req.FileURL != nil {
		fmt.Fprintf(&b, "\n\nDocument : %s", *req.FileURL)
	}
	b.WriteString(mailSignature)
	return models.Notification{
		Kind:          models.NotificationAttestation,
		Recipient:     valueOr(req.VolunteerEmail, ""),
		Subject:       "Votre demande d'attestation " + outcome,
		Body:          b.String(),
		ReferenceType: "attestation",
		ReferenceID:   req.ID,
	}
}

func reminderMail(contact models.ProfileContact, event *models.Event, day models.Date) models.Notification {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\nPetit rappel : vous participez demain (%s) à « %s »", contact.FullName, formatDay(event.Date), event.Title)
	if event.Time != nil {
		fmt.Fprintf(&b, " à %s", *event.Time)
	}
	fmt.Fprintf(&b, ".\nLieu : %s", valueOr(event.Location, valueOr(event.OnlineLink, "à confirmer")))
	b.WriteString(mailSignature)
	key := strings.Join([]string{"reminder", event.ID, strings.ToLower(contact.Email), day.String()}, "|")
	return models.Notification{
		Kind:          models.NotificationReminder,
		Recipient:     contact.Email,
		Subject:       fmt.Sprintf("Rappel : %s demain", event.Title),
		Body:          b.String(),
		ReferenceType: "event",
		ReferenceID:   event.ID,
		DedupeKey:     &key,
	}
}
