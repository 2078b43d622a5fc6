package sms

import "fmt"

// Message copy sent to patients. French, matching the audience in Benin.

func OTPMessage(code string) string {
	return fmt.Sprintf("Lokita: Votre code de vérification est %s. Valide pendant 3 minutes.", code)
}

func AppointmentRequestMessage(hospitalName string) string {
	return fmt.Sprintf("Lokita: Votre demande de RDV à %s a été reçue. Vous serez notifié de la confirmation.", hospitalName)
}

func AppointmentConfirmedMessage(hospitalName, date string) string {
	return fmt.Sprintf("Lokita: RDV confirmé à %s le %s. Soyez ponctuel(le) !", hospitalName, date)
}

func AppointmentRejectedMessage(hospitalName string) string {
	return fmt.Sprintf("Lokita: Votre demande de RDV à %s n'a pas pu être acceptée. Veuillez nous contacter.", hospitalName)
}
