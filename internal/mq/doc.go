// Package mq — зеркалирование алертов в RabbitMQ.
//
// Необязательная интеграция: при заданном AMQP_URL каждый
// сформированный алерт дополнительно публикуется в exchange
// centinela.alerts, откуда его могут забирать смежные системы
// (журнал аудита, дашборды). Доставка в Discord от зеркала
// не зависит: ошибка публикации только логируется.
//
// Процесс одноразовый, поэтому соединение простое — dial при старте,
// close при завершении, без reconnect-цикла.
package mq
