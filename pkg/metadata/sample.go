package metadata

// SampleCatalog returns a small catalog of standard objects (Account,
// Contact, Opportunity, Lead, Case, User) with their common fields and
// child relationships. It backs demos and the REPL's default completion
// source when no org catalog is supplied.
func SampleCatalog() *Catalog {
	c := NewCatalog()

	c.AddSObject("Account").
		WithLabel("Account").
		AddField("Id", "id").
		AddLabeledField("Name", "string", "Account Name").
		AddField("Industry", "picklist").
		AddLabeledField("AnnualRevenue", "currency", "Annual Revenue").
		AddField("Phone", "phone").
		AddField("Website", "url").
		AddField("BillingCity", "string").
		AddField("BillingState", "string").
		AddField("NumberOfEmployees", "int").
		AddField("CreatedDate", "datetime").
		AddReferenceField("OwnerId", "Owner", "User").
		AddReferenceField("ParentId", "Parent", "Account").
		AddRelationship("Contacts", "Contact", "AccountId").
		AddRelationship("Opportunities", "Opportunity", "AccountId").
		AddRelationship("Cases", "Case", "AccountId")

	c.AddSObject("Contact").
		WithLabel("Contact").
		AddField("Id", "id").
		AddField("FirstName", "string").
		AddField("LastName", "string").
		AddLabeledField("Name", "string", "Full Name").
		AddField("Email", "email").
		AddField("Phone", "phone").
		AddField("Title", "string").
		AddField("CreatedDate", "datetime").
		AddReferenceField("AccountId", "Account", "Account").
		AddReferenceField("OwnerId", "Owner", "User").
		AddRelationship("Cases", "Case", "ContactId")

	c.AddSObject("Opportunity").
		WithLabel("Opportunity").
		AddField("Id", "id").
		AddField("Name", "string").
		AddLabeledField("StageName", "picklist", "Stage").
		AddField("Amount", "currency").
		AddLabeledField("CloseDate", "date", "Close Date").
		AddField("IsClosed", "boolean").
		AddField("IsWon", "boolean").
		AddField("CreatedDate", "datetime").
		AddReferenceField("AccountId", "Account", "Account").
		AddReferenceField("OwnerId", "Owner", "User")

	c.AddSObject("Lead").
		WithLabel("Lead").
		AddField("Id", "id").
		AddField("FirstName", "string").
		AddField("LastName", "string").
		AddField("Name", "string").
		AddField("Company", "string").
		AddField("Email", "email").
		AddField("Status", "picklist").
		AddField("IsConverted", "boolean").
		AddField("CreatedDate", "datetime").
		AddReferenceField("OwnerId", "Owner", "User")

	c.AddSObject("Case").
		WithLabel("Case").
		AddField("Id", "id").
		AddLabeledField("CaseNumber", "string", "Case Number").
		AddField("Subject", "string").
		AddField("Status", "picklist").
		AddField("Priority", "picklist").
		AddField("Origin", "picklist").
		AddField("IsClosed", "boolean").
		AddField("CreatedDate", "datetime").
		AddReferenceField("AccountId", "Account", "Account").
		AddReferenceField("ContactId", "Contact", "Contact").
		AddReferenceField("OwnerId", "Owner", "User")

	c.AddSObject("User").
		WithLabel("User").
		AddField("Id", "id").
		AddField("Name", "string").
		AddField("FirstName", "string").
		AddField("LastName", "string").
		AddField("Email", "email").
		AddField("Username", "string").
		AddField("IsActive", "boolean").
		AddField("CreatedDate", "datetime")

	return c
}
