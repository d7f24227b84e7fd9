package resilience

import (
	"context"
)

// Operation одно обращение к зависимости
// Обязано уважать отмену контекста на всех блокирующих участках
type Operation func(ctx context.Context) Outcome

// Policy слой policy pipeline оборачивающий следующий шаг
// Слои вызываются снаружи внутрь и каждый обязан вернуть Outcome
// ни один слой не глотает ошибку без классификации
type Policy func(next Operation) Operation

// Chain собирает слои в один Policy
// Порядок аргументов снаружи внутрь: Chain(a, b)(op) == a(b(op))
// Состав пайплайна объявляется один раз при создании клиента зависимости
func Chain(policies ...Policy) Policy {
	return func(next Operation) Operation {
		for i := len(policies) - 1; i >= 0; i-- {
			next = policies[i](next)
		}
		return next
	}
}

// Execute выполняет операцию через собранный пайплайн
func Execute(ctx context.Context, p Policy, op Operation) Outcome {
	return p(op)(ctx)
}
