package service

import "fmt"

func welcomeEmailTemplate(name, appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi %s,

Your account is ready. Log your dry and current weight after each session and
%s will keep track of your fluid gain for you.

You can also set medication reminders, keep your reports in one place and find
a dialysis technician near you.

Open the app: %s

Take care,
The %s Team`, name, appName, appURL, appName)

	return subject, body
}

func medicationReminderTemplate(name, medName, dose, at, appName string) (string, string) {
	subject := fmt.Sprintf("Time for %s", medName)
	body := fmt.Sprintf(`Hi %s,

This is your %s reminder: take %s (%s).

Best,
The %s Team`, name, at, medName, dose, appName)

	return subject, body
}

func phoneCodeMessage(code, appName string) string {
	return fmt.Sprintf("%s: your sign-in code is %s. It expires in 10 minutes.", appName, code)
}

func medicationReminderSMS(medName, dose, appName string) string {
	return fmt.Sprintf("%s reminder: take %s (%s) now.", appName, medName, dose)
}
