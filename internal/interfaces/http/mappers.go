package http

import (
	"github.com/jhoicas/Modulos-api/internal/application/dto"
	"github.com/jhoicas/Modulos-api/internal/application/entitlement"
	"github.com/jhoicas/Modulos-api/internal/domain/entity"
)

func toModuleStatusResponse(st *entitlement.Status) dto.ModuleStatusResponse {
	out := dto.ModuleStatusResponse{
		Plan:             toPlanResponse(st.Plan),
		ActiveModules:    st.ActiveModuleCodes,
		ActiveCount:      st.ActiveCount,
		PaidActiveCount:  st.PaidActiveCount,
		MaxAllowed:       st.MaxAllowed,
		CanActivateMore:  st.CanActivateMore,
		AvailableModules: make([]dto.ModuleResponse, 0, len(st.AvailableModules)),
	}
	for _, m := range st.AvailableModules {
		out.AvailableModules = append(out.AvailableModules, dto.ModuleResponse{
			Code: m.Code, Name: m.Name, IsCore: m.IsCore, Rank: m.Rank,
		})
	}
	return out
}

func toPlanResponse(p *entity.Plan) *dto.PlanResponse {
	if p == nil {
		return nil
	}
	return &dto.PlanResponse{
		Code:         p.Code,
		Name:         p.Name,
		PriceMonthly: p.PriceMonthly,
		PriceYearly:  p.PriceYearly,
		TrialDays:    p.TrialDays,
		MaxModules:   p.MaxModules,
		MaxBranches:  p.MaxBranches,
		Features:     p.Features,
	}
}
