package port

import "validator_payments_api/internal/domain"


type ValidatorCache interface {
    Add(id string, info domain.ValidatorInfo)
    Get(id string) (domain.ValidatorInfo, bool)
}
