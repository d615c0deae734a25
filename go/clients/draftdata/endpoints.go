package draftdata

const (
	EndpointPickOrder = "/v1/%s/drafts/%d/order"
	EndpointProspects = "/v1/%s/drafts/%d/prospects"
	EndpointTeamNeeds = "/v1/%s/teams/%s/needs"
)
